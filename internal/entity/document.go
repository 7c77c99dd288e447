package entity

const (
	MIMETypeDocument = "application/vnd.google-apps.document"
	MIMETypeFolder   = "application/vnd.google-apps.folder"
)

// DriveItem is one entry returned by a Drive search or listing call.
type DriveItem struct {
	ID           string
	Name         string
	MIMEType     string
	Parents      []string
	CreatedTime  string // RFC 3339 as returned by Drive, empty when not requested
	ModifiedTime string
}

func (i *DriveItem) IsDocument() bool {
	return i.MIMEType == MIMETypeDocument
}

func (i *DriveItem) IsFolder() bool {
	return i.MIMEType == MIMETypeFolder
}

// DocumentRef identifies one Google Doc found during the folder walk.
type DocumentRef struct {
	ID           string
	Name         string
	Folder       string // Slash-joined folder names from the walk root, not stored in Drive
	CreatedTime  string
	ModifiedTime string
}
