package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Song is the catalog entry for one uploaded file. ObjectID is a weak
// reference into the GridFS bucket: the record does not own the blob's
// lifecycle and deleting one never cascades to the other.
type Song struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Artist    string             `bson:"artist" json:"artist"`
	Filename  string             `bson:"filename" json:"filename"`
	ObjectID  primitive.ObjectID `bson:"objectId" json:"objectId"`
	MimeType  string             `bson:"mimeType" json:"mimeType"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
