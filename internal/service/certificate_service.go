package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"
	"github.com/pranjitbis/learning-management-system/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrCertificateExists   = errors.New("certificate already exists for this user and course")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateUpload   = errors.New("failed to store certificate file")
	ErrUnsupportedFileType = errors.New("unsupported certificate file type")
)

// allowed certificate upload types
var certificateExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// CertificateService manages admin-issued certificate artifacts and the
// eligibility gate for their download links.
type CertificateService interface {
	// Issue stores the uploaded artifact and creates an approved
	// certificate record for (userID, courseID). One per pair.
	Issue(ctx context.Context, userID, courseID uint, fileName, contentType string, body io.Reader) (*domain.Certificate, error)

	// CertificateURL resolves the download link for (userID, courseID).
	// It returns "" unless BOTH an approved certificate exists AND the
	// user's course progress is completed. The two conditions are checked
	// independently at read time: issuance is a manual admin action, and
	// completion alone never implies a certificate (and vice versa).
	CertificateURL(ctx context.Context, userID, courseID uint) (string, error)

	List(ctx context.Context, userID *uint) ([]domain.Certificate, error)
	SetApproval(ctx context.Context, id uint, approved bool) error
	// Delete removes the record and the stored artifact.
	Delete(ctx context.Context, id uint) error
}

// certificateService implements the CertificateService interface.
type certificateService struct {
	certRepo     repository.CertificateRepository
	progressRepo repository.ProgressRepository
	fileStorage  storage.FileStorage
}

// NewCertificateService creates a new instance of certificateService.
func NewCertificateService(
	certRepo repository.CertificateRepository,
	progressRepo repository.ProgressRepository,
	fileStorage storage.FileStorage,
) CertificateService {
	return &certificateService{
		certRepo:     certRepo,
		progressRepo: progressRepo,
		fileStorage:  fileStorage,
	}
}

// Issue stores the artifact under a generated object key and creates the
// certificate record, approved on creation as in the admin back office.
func (s *certificateService) Issue(ctx context.Context, userID, courseID uint, fileName, contentType string, body io.Reader) (*domain.Certificate, error) {
	ext, err := certificateExtension(fileName, contentType)
	if err != nil {
		return nil, err
	}

	// Reject duplicates before touching storage.
	if _, err := s.certRepo.Get(ctx, userID, courseID); err == nil {
		return nil, ErrCertificateExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	objectKey := fmt.Sprintf("cert_%s%s", uuid.NewString(), ext)
	if err := s.fileStorage.SaveObject(ctx, objectKey, contentType, body); err != nil {
		return nil, ErrCertificateUpload
	}

	cert := &domain.Certificate{
		UserID:   userID,
		CourseID: courseID,
		FilePath: objectKey,
		Approved: true,
	}
	certID, err := s.certRepo.Create(ctx, cert)
	if err != nil {
		// Compensate: don't leave an orphaned artifact behind.
		_ = s.fileStorage.DeleteObject(ctx, objectKey)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCertificateExists
		}
		return nil, err
	}
	cert.ID = certID

	return cert, nil
}

// CertificateURL applies the dual gate. Both reads happen per request with
// no caching: an approved certificate without a completed course yields
// nothing, as does a completed course without an approved certificate.
func (s *certificateService) CertificateURL(ctx context.Context, userID, courseID uint) (string, error) {
	cp, err := s.progressRepo.GetCourseProgress(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if !cp.Completed {
		return "", nil
	}

	cert, err := s.certRepo.GetApproved(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	return s.fileStorage.ObjectURL(ctx, cert.FilePath)
}

// List returns certificate records for the admin back office.
func (s *certificateService) List(ctx context.Context, userID *uint) ([]domain.Certificate, error) {
	return s.certRepo.List(ctx, userID)
}

// SetApproval toggles a certificate's approved flag.
func (s *certificateService) SetApproval(ctx context.Context, id uint, approved bool) error {
	err := s.certRepo.SetApproved(ctx, id, approved)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCertificateNotFound
	}
	return err
}

// Delete removes the record first, then the artifact. A failed artifact
// delete is not fatal: the record is gone and the orphan can be swept.
func (s *certificateService) Delete(ctx context.Context, id uint) error {
	cert, err := s.certRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCertificateNotFound
		}
		return err
	}

	if err := s.certRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCertificateNotFound
		}
		return err
	}

	_ = s.fileStorage.DeleteObject(ctx, cert.FilePath)
	return nil
}

// certificateExtension resolves the stored extension from the declared
// content type, falling back to the original file name's extension.
func certificateExtension(fileName, contentType string) (string, error) {
	if ext, ok := certificateExtensions[strings.ToLower(contentType)]; ok {
		return ext, nil
	}
	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return ".pdf", nil
	case ".png":
		return ".png", nil
	case ".jpg", ".jpeg":
		return ".jpg", nil
	}
	return "", ErrUnsupportedFileType
}
