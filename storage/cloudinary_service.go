package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ResumeFolder is where every uploaded résumé lands, both for server-side
// uploads and for signed direct uploads from the client.
const ResumeFolder = "resumes"

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudinaryURL string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %v", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadResume stores the file and returns its public URL. Each call creates
// a new object under an opaque id; the workflow is responsible for reusing a
// URL instead of re-uploading on retries.
func (s *CloudinaryService) UploadResume(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	publicID := fmt.Sprintf("%s/%s", uuid.NewString(), fileName)

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       ResumeFolder,
		PublicID:     publicID,
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", errors.New(result.Error.Message)
	}

	log.Printf("✅ Resume uploaded: %s", result.SecureURL)
	return result.SecureURL, nil
}
