package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"
)

// Snapshot is one persisted version of the trip collection.
// SHA identifies the version and is the parent for the next conditional write.
type Snapshot struct {
	SHA       string
	Data      []byte
	UpdatedAt time.Time
}

// SaveResult describes a completed conditional write.
// Created is true when no previous version existed.
type SaveResult struct {
	SHA       string `json:"sha"`
	CommitSHA string `json:"commit,omitempty"`
	Created   bool   `json:"created"`
}

// BlobSHA returns the git blob object id of data, the same value GitHub
// reports as a file's "sha". Stores that are not backed by git use it so
// every backend identifies versions the same way.
func BlobSHA(data []byte) string {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(data)) + "\x00"))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
