package app

import (
	"log"
	"mime"
)

// Document types phones upload that older mime tables lack.
func init() {
	ensureMimeType(".webp", "image/webp")
	ensureMimeType(".heic", "image/heic")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
