package model

import "time"

// PDF is the metadata row for an uploaded document in the `pdfs` table.
// The bytes themselves live in the blob store under StoragePath.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owning user; not enforced as a foreign key.
//  FileName    – filename supplied by the uploader.
//  StoragePath – blob store key, "<uuid>.pdf".
//  SizeBytes   – number of bytes stored.
//  ContentType – media type reported at upload.
//  CreatedAt   – upload timestamp.
type PDF struct {
	ID          uint64    // pdfs.id
	UserID      uint64    // pdfs.user_id
	FileName    string    // pdfs.file_name
	StoragePath string    // pdfs.storage_path
	SizeBytes   int64     // pdfs.size_bytes
	ContentType string    // pdfs.content_type
	CreatedAt   time.Time // pdfs.created_at
}
