package domain

// Attachment is a file reference accompanying a user message. URI points at
// the provider-side upload (or a local path before upload).
type Attachment struct {
	URI      string `json:"uri,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Input is what a front end hands to the loop controller: the user's text
// plus any files already uploaded to the provider.
type Input struct {
	Text  string       `json:"text"`
	Files []Attachment `json:"files,omitempty"`
}
