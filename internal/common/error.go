package common

import "fmt"

var (
	ErrCredentialsError    = fmt.Errorf("cannot set up credentials")
	ErrFolderNotFoundError = fmt.Errorf("folder not found")
	ErrAmbiguousFolder     = fmt.Errorf("folder name is ambiguous")
	ErrSharedDriveNotFound = fmt.Errorf("shared drive not found")
	ErrNoDocumentsFound    = fmt.Errorf("no documents found")
	ErrNothingToWrite      = fmt.Errorf("no data to save")
)
