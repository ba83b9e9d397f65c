package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"
)

// fakeData is the shared in-memory backing store for the fake
// repositories. The progress fakes reproduce the SQL upsert semantics
// (monotonic OR on completed, first-write-wins on completed_at) so the
// service tests exercise the same merge behavior as the real store.
type fakeData struct {
	mu sync.Mutex

	users          map[uint]*domain.User
	courses        map[uint]*domain.Course
	videos         map[uint]*domain.Video
	accesses       map[[2]uint]*domain.Access
	videoProgress  map[[2]uint]*domain.VideoProgress
	courseProgress map[[2]uint]*domain.CourseProgress
	certificates   map[uint]*domain.Certificate

	nextID uint
}

func newFakeData() *fakeData {
	return &fakeData{
		users:          make(map[uint]*domain.User),
		courses:        make(map[uint]*domain.Course),
		videos:         make(map[uint]*domain.Video),
		accesses:       make(map[[2]uint]*domain.Access),
		videoProgress:  make(map[[2]uint]*domain.VideoProgress),
		courseProgress: make(map[[2]uint]*domain.CourseProgress),
		certificates:   make(map[uint]*domain.Certificate),
	}
}

func (d *fakeData) id() uint {
	d.nextID++
	return d.nextID
}

// --- seed helpers ---

func (d *fakeData) addUser(name, email string) *domain.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := &domain.User{ID: d.id(), Name: name, Email: email, Role: domain.RoleUser}
	d.users[u.ID] = u
	return u
}

func (d *fakeData) addCourse(title string, videoTitles ...string) *domain.Course {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := &domain.Course{ID: d.id(), Title: title}
	d.courses[c.ID] = c
	for i, vt := range videoTitles {
		v := &domain.Video{ID: d.id(), CourseID: c.ID, Title: vt, URL: "https://videos.example.test/" + vt, Position: i + 1}
		d.videos[v.ID] = v
	}
	return c
}

func (d *fakeData) grantAccess(userID, courseID uint, approved bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	a := &domain.Access{ID: d.id(), UserID: userID, CourseID: courseID, Approved: approved, RequestedAt: now}
	if approved {
		a.GrantedAt = &now
	}
	d.accesses[[2]uint{userID, courseID}] = a
}

func (d *fakeData) courseVideos(courseID uint) []domain.Video {
	videos := make([]domain.Video, 0)
	for _, v := range d.videos {
		if v.CourseID == courseID {
			videos = append(videos, *v)
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		if videos[i].Position != videos[j].Position {
			return videos[i].Position < videos[j].Position
		}
		return videos[i].ID < videos[j].ID
	})
	return videos
}

// --- UserRepository ---

type fakeUserRepo struct{ d *fakeData }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (uint, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, u := range r.d.users {
		if u.Email == user.Email {
			return 0, repository.ErrConflict
		}
	}
	user.ID = r.d.id()
	cp := *user
	r.d.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, u := range r.d.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*domain.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	users := make([]domain.User, 0, len(r.d.users))
	for _, u := range r.d.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// --- CourseRepository ---

type fakeCourseRepo struct{ d *fakeData }

func (r *fakeCourseRepo) Create(_ context.Context, course *domain.Course) (uint, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	course.ID = r.d.id()
	for i := range course.Videos {
		course.Videos[i].ID = r.d.id()
		course.Videos[i].CourseID = course.ID
		v := course.Videos[i]
		r.d.videos[v.ID] = &v
	}
	stored := *course
	stored.Videos = nil
	r.d.courses[course.ID] = &stored
	return course.ID, nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id uint) (*domain.Course, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Videos = r.d.courseVideos(id)
	return &cp, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]domain.Course, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	courses := make([]domain.Course, 0, len(r.d.courses))
	for _, c := range r.d.courses {
		cp := *c
		cp.Videos = r.d.courseVideos(c.ID)
		courses = append(courses, cp)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *domain.Course) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.courses[course.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = course.Title
	existing.Description = course.Description
	existing.Price = course.Price
	existing.Category = course.Category
	existing.Thumbnail = course.Thumbnail
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id uint) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.courses, id)
	for vid, v := range r.d.videos {
		if v.CourseID == id {
			delete(r.d.videos, vid)
		}
	}
	return nil
}

// --- VideoRepository ---

type fakeVideoRepo struct{ d *fakeData }

func (r *fakeVideoRepo) Create(_ context.Context, video *domain.Video) (uint, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	video.ID = r.d.id()
	cp := *video
	r.d.videos[video.ID] = &cp
	return video.ID, nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, id uint) (*domain.Video, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	v, ok := r.d.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) NextPosition(_ context.Context, courseID uint) (int, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	max := 0
	for _, v := range r.d.videos {
		if v.CourseID == courseID && v.Position > max {
			max = v.Position
		}
	}
	return max + 1, nil
}

func (r *fakeVideoRepo) SetDurationIfUnset(_ context.Context, id uint, seconds int) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	v, ok := r.d.videos[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v.Duration == nil {
		v.Duration = &seconds
	}
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, id uint) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.videos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.videos, id)
	return nil
}

// --- AccessRepository ---

type fakeAccessRepo struct{ d *fakeData }

func (r *fakeAccessRepo) Get(_ context.Context, userID, courseID uint) (*domain.Access, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.accesses[[2]uint{userID, courseID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccessRepo) List(_ context.Context, filter repository.AccessFilter) ([]domain.Access, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	accesses := make([]domain.Access, 0)
	for _, a := range r.d.accesses {
		if filter.Approved != nil && a.Approved != *filter.Approved {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		cp := *a
		if c, ok := r.d.courses[a.CourseID]; ok {
			cc := *c
			cp.Course = &cc
		}
		accesses = append(accesses, cp)
	}
	sort.Slice(accesses, func(i, j int) bool { return accesses[i].ID < accesses[j].ID })
	return accesses, nil
}

func (r *fakeAccessRepo) Upsert(_ context.Context, access *domain.Access) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	key := [2]uint{access.UserID, access.CourseID}
	if existing, ok := r.d.accesses[key]; ok {
		existing.Approved = access.Approved
		existing.GrantedAt = access.GrantedAt
		access.ID = existing.ID
		return nil
	}
	access.ID = r.d.id()
	cp := *access
	r.d.accesses[key] = &cp
	return nil
}

func (r *fakeAccessRepo) Delete(_ context.Context, id uint) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for key, a := range r.d.accesses {
		if a.ID == id {
			delete(r.d.accesses, key)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- ProgressRepository ---

type fakeProgressRepo struct{ d *fakeData }

func (r *fakeProgressRepo) InTx(_ context.Context, fn func(repository.ProgressRepository) error) error {
	return fn(r)
}

func (r *fakeProgressRepo) UpsertVideoProgress(_ context.Context, vp *domain.VideoProgress) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	key := [2]uint{vp.UserID, vp.VideoID}
	existing, ok := r.d.videoProgress[key]
	if !ok {
		cp := *vp
		cp.ID = r.d.id()
		cp.UpdatedAt = time.Now()
		r.d.videoProgress[key] = &cp
		return nil
	}
	existing.Progress = vp.Progress
	existing.Completed = existing.Completed || vp.Completed
	if existing.CompletedAt == nil {
		existing.CompletedAt = vp.CompletedAt
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *fakeProgressRepo) GetVideoProgress(_ context.Context, userID, videoID uint) (*domain.VideoProgress, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	vp, ok := r.d.videoProgress[[2]uint{userID, videoID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *vp
	return &cp, nil
}

func (r *fakeProgressRepo) ListVideoProgressByUser(_ context.Context, userID uint) ([]domain.VideoProgress, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	records := make([]domain.VideoProgress, 0)
	for _, vp := range r.d.videoProgress {
		if vp.UserID == userID {
			records = append(records, *vp)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (r *fakeProgressRepo) CountCompletedInCourse(_ context.Context, userID, courseID uint) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var count int64
	for _, vp := range r.d.videoProgress {
		if vp.UserID != userID || !vp.Completed {
			continue
		}
		if v, ok := r.d.videos[vp.VideoID]; ok && v.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProgressRepo) CountCourseVideos(_ context.Context, courseID uint) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var count int64
	for _, v := range r.d.videos {
		if v.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProgressRepo) GetCourseProgress(_ context.Context, userID, courseID uint) (*domain.CourseProgress, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	cp, ok := r.d.courseProgress[[2]uint{userID, courseID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cp
	return &out, nil
}

func (r *fakeProgressRepo) UpsertCourseProgress(_ context.Context, cp *domain.CourseProgress) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	key := [2]uint{cp.UserID, cp.CourseID}
	existing, ok := r.d.courseProgress[key]
	if !ok {
		stored := *cp
		stored.ID = r.d.id()
		stored.UpdatedAt = time.Now()
		r.d.courseProgress[key] = &stored
		return nil
	}
	existing.VideosWatched = cp.VideosWatched
	existing.TotalVideos = cp.TotalVideos
	existing.Completed = cp.Completed
	if existing.CompletedAt == nil {
		existing.CompletedAt = cp.CompletedAt
	}
	existing.UpdatedAt = time.Now()
	return nil
}

// --- CertificateRepository ---

type fakeCertificateRepo struct {
	d *fakeData

	createErr error // forced failure for compensation tests
}

func (r *fakeCertificateRepo) Create(_ context.Context, cert *domain.Certificate) (uint, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	for _, c := range r.d.certificates {
		if c.UserID == cert.UserID && c.CourseID == cert.CourseID {
			return 0, repository.ErrConflict
		}
	}
	cert.ID = r.d.id()
	cert.IssuedAt = time.Now()
	cp := *cert
	r.d.certificates[cert.ID] = &cp
	return cert.ID, nil
}

func (r *fakeCertificateRepo) GetByID(_ context.Context, id uint) (*domain.Certificate, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.certificates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCertificateRepo) Get(_ context.Context, userID, courseID uint) (*domain.Certificate, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, c := range r.d.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCertificateRepo) GetApproved(_ context.Context, userID, courseID uint) (*domain.Certificate, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, c := range r.d.certificates {
		if c.UserID == userID && c.CourseID == courseID && c.Approved {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCertificateRepo) List(_ context.Context, userID *uint) ([]domain.Certificate, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	certs := make([]domain.Certificate, 0)
	for _, c := range r.d.certificates {
		if userID != nil && c.UserID != *userID {
			continue
		}
		certs = append(certs, *c)
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].ID < certs[j].ID })
	return certs, nil
}

func (r *fakeCertificateRepo) SetApproved(_ context.Context, id uint, approved bool) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.certificates[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Approved = approved
	return nil
}

func (r *fakeCertificateRepo) Delete(_ context.Context, id uint) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.certificates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.certificates, id)
	return nil
}

// --- FileStorage ---

type fakeFileStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	saveErr error
	urlErr  error
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{objects: make(map[string][]byte)}
}

func (s *fakeFileStorage) SaveObject(_ context.Context, key, _ string, body io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeFileStorage) ObjectURL(_ context.Context, key string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://files.example.test/" + key, nil
}

func (s *fakeFileStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeFileStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}
