package pubsub

import (
	"fmt"
	"strings"

	"github.com/relloyd/bqload/constants"
)

// Attribute names and event types set by Cloud Storage on bucket notifications.
const (
	AttrBucketID        = "bucketId"
	AttrObjectID        = "objectId"
	AttrEventType       = "eventType"
	EventObjectFinalize = "OBJECT_FINALIZE"
)

// Notification describes a change to an object in a Cloud Storage bucket.
type Notification struct {
	Bucket    string
	Object    string
	EventType string
}

// ParseNotification reads a Notification from the attributes of a Pub/Sub message.
func ParseNotification(attrs map[string]string) (Notification, error) {
	n := Notification{
		Bucket:    attrs[AttrBucketID],
		Object:    attrs[AttrObjectID],
		EventType: attrs[AttrEventType],
	}
	if n.Bucket == "" || n.Object == "" {
		return n, fmt.Errorf("message is not a storage notification: missing %v or %v attribute", AttrBucketID, AttrObjectID)
	}
	return n, nil
}

// URI returns the gs:// location of the object.
func (n Notification) URI() string {
	return fmt.Sprintf("%v://%v/%v", constants.SchemeGCS, n.Bucket, n.Object)
}

// IsTrigger is true when a trigger file has been written.
func (n Notification) IsTrigger() bool {
	return n.EventType == EventObjectFinalize && strings.HasSuffix(n.Object, constants.TriggerFileSuffix)
}
