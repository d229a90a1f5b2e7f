package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ImageRef is a tagged image input: either a reference to an already-stored
// or external image (URL set) or inline upload bytes (Data and Filename set).
// It unmarshals from either a plain JSON string (treated as a URL) or an
// object with "url" or "data"+"filename" keys.
type ImageRef struct {
	URL      string
	Data     []byte
	Filename string
}

func (r ImageRef) IsUpload() bool {
	return len(r.Data) > 0
}

func (r ImageRef) IsZero() bool {
	return r.URL == "" && len(r.Data) == 0
}

// Resolve stores upload variants and returns the resulting reference; URL
// variants pass through unchanged.
func (r ImageRef) Resolve(store Store, private bool) (string, error) {
	if r.IsUpload() {
		if r.Filename == "" {
			return "", fmt.Errorf("filename is required for uploaded images")
		}
		return store.Save(r.Filename, r.Data, private)
	}
	return r.URL, nil
}

func (r *ImageRef) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		*r = ImageRef{URL: plain}
		return nil
	}

	var obj struct {
		URL      string `json:"url"`
		Image    string `json:"image"`
		FileURL  string `json:"file_url"`
		Data     string `json:"data"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	if obj.Data != "" {
		data, err := base64.StdEncoding.DecodeString(obj.Data)
		if err != nil {
			return fmt.Errorf("decode image data: %w", err)
		}
		*r = ImageRef{Data: data, Filename: obj.Filename}
		return nil
	}

	url := obj.URL
	if url == "" {
		url = obj.Image
	}
	if url == "" {
		url = obj.FileURL
	}
	*r = ImageRef{URL: url}
	return nil
}

func (r ImageRef) MarshalJSON() ([]byte, error) {
	if r.IsUpload() {
		return json.Marshal(map[string]string{
			"data":     base64.StdEncoding.EncodeToString(r.Data),
			"filename": r.Filename,
		})
	}
	return json.Marshal(r.URL)
}
