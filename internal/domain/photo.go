package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressPhoto stores metadata about a client progress photo. The image
// itself lives in S3; clients upload directly via presigned URLs.
type ProgressPhoto struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	GymID       primitive.ObjectID `bson:"gymId" json:"gymId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // internal use only
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size,omitempty" json:"size,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
