package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

const contentBucket = "course-contents"

func storageClient() *storage.Client {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	return storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)
}

// UploadContentFile upload file nội dung (video/pdf) lên Supabase Storage.
// Path: course-contents/<contentID>.<ext>, trả về object path để lưu vào catalog.
func UploadContentFile(fileHeader *multipart.FileHeader, contentID string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	objectPath := fmt.Sprintf("contents/%s%s", contentID, ext)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	if _, err := storageClient().UploadFile(contentBucket, objectPath, &buf, options); err != nil {
		return "", err
	}
	return objectPath, nil
}

// SignedContentURL resolver URL stream: ký URL có thời hạn cho object path.
// Engine tracking không bao giờ đụng vào bytes media, chỉ phát URL opaque.
func SignedContentURL(objectPath string, expiresInSec int) (string, error) {
	resp, err := storageClient().CreateSignedUrl(contentBucket, objectPath, expiresInSec)
	if err != nil {
		return "", err
	}
	return resp.SignedURL, nil
}
