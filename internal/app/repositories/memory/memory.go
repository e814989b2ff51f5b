// Package memory keeps every entity in process memory behind the repository
// interfaces. It mirrors the Postgres constraints (unique username, email and
// classid, cascading deletes) and backs the service and controller tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/helpers"
)

// Store is the shared in-memory database
type Store struct {
	mu           sync.Mutex
	seq          int64
	users        map[int64]*models.User
	questions    map[int64]*models.Question
	answers      map[int64]*models.Answer
	reservations map[int64]*models.Reservation
	courses      map[int64]*models.Course
	images       map[int64]*models.CourseImage
	now          func() time.Time

	Users        *Users
	Questions    *Questions
	Answers      *Answers
	Reservations *Reservations
	Courses      *Courses
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{
		users:        map[int64]*models.User{},
		questions:    map[int64]*models.Question{},
		answers:      map[int64]*models.Answer{},
		reservations: map[int64]*models.Reservation{},
		courses:      map[int64]*models.Course{},
		images:       map[int64]*models.CourseImage{},
	}
	// Strictly increasing clock so "newest first" orderings are deterministic.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base.Add(time.Duration(s.seq) * time.Second) }

	s.Users = &Users{s}
	s.Questions = &Questions{s}
	s.Answers = &Answers{s}
	s.Reservations = &Reservations{s}
	s.Courses = &Courses{s}
	return s
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Users implements repositories.IUserRepository
type Users struct{ s *Store }

var _ repositories.IUserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, user *models.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return 0, apperrors.ErrUsernameAlreadyExists
		}
		if u.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = r.s.nextID()
	cp := *user
	r.s.users[user.ID] = &cp
	return user.ID, nil
}

func (r *Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *Users) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) UsernameExists(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored users
func (r *Users) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users)
}

// Questions implements repositories.IQuestionRepository
type Questions struct{ s *Store }

var _ repositories.IQuestionRepository = (*Questions)(nil)

func (r *Questions) decorate(q *models.Question) *models.Question {
	cp := *q
	if u, ok := r.s.users[q.UserID]; ok {
		cp.Author = u.Username
	}
	cp.AnswerCount = 0
	for _, a := range r.s.answers {
		if a.QuestionID == q.ID {
			cp.AnswerCount++
		}
	}
	return &cp
}

func (r *Questions) List(_ context.Context, page, pageSize int) ([]*models.Question, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]*models.Question, 0, len(r.s.questions))
	for _, q := range r.s.questions {
		all = append(all, r.decorate(q))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreateDate.Equal(all[j].CreateDate) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreateDate.After(all[j].CreateDate)
	})

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.Question{}, total, nil
	}
	end := offset + limit
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[offset:end], total, nil
}

func (r *Questions) GetByID(_ context.Context, id int64) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, apperrors.ErrQuestionNotFound
	}
	return r.decorate(q), nil
}

func (r *Questions) Create(_ context.Context, question *models.Question) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	question.ID = r.s.nextID()
	if question.CreateDate.IsZero() {
		question.CreateDate = r.s.now()
	}
	cp := *question
	r.s.questions[question.ID] = &cp
	return question.ID, nil
}

func (r *Questions) Update(_ context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[question.ID]
	if !ok {
		return apperrors.ErrQuestionNotFound
	}
	q.Subject = question.Subject
	q.Content = question.Content
	q.ImagePath = question.ImagePath
	q.ModifyDate = question.ModifyDate
	return nil
}

func (r *Questions) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.questions[id]; !ok {
		return apperrors.ErrQuestionNotFound
	}
	for aid, a := range r.s.answers {
		if a.QuestionID == id {
			delete(r.s.answers, aid)
		}
	}
	delete(r.s.questions, id)
	return nil
}

func (r *Questions) CountByUser(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, q := range r.s.questions {
		if q.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Answers implements repositories.IAnswerRepository
type Answers struct{ s *Store }

var _ repositories.IAnswerRepository = (*Answers)(nil)

func (r *Answers) decorate(a *models.Answer) *models.Answer {
	cp := *a
	if u, ok := r.s.users[a.UserID]; ok {
		cp.Author = u.Username
	}
	return &cp
}

func (r *Answers) ListByQuestion(_ context.Context, questionID int64) ([]*models.Answer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Answer{}
	for _, a := range r.s.answers {
		if a.QuestionID == questionID {
			out = append(out, r.decorate(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Answers) GetByID(_ context.Context, id int64) (*models.Answer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.answers[id]
	if !ok {
		return nil, apperrors.ErrAnswerNotFound
	}
	return r.decorate(a), nil
}

func (r *Answers) Create(_ context.Context, answer *models.Answer) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.questions[answer.QuestionID]; !ok {
		return 0, apperrors.ErrQuestionNotFound
	}
	answer.ID = r.s.nextID()
	if answer.CreateDate.IsZero() {
		answer.CreateDate = r.s.now()
	}
	cp := *answer
	r.s.answers[answer.ID] = &cp
	return answer.ID, nil
}

func (r *Answers) Update(_ context.Context, answer *models.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.answers[answer.ID]
	if !ok {
		return apperrors.ErrAnswerNotFound
	}
	a.Content = answer.Content
	a.ModifyDate = answer.ModifyDate
	return nil
}

func (r *Answers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.answers[id]; !ok {
		return apperrors.ErrAnswerNotFound
	}
	delete(r.s.answers, id)
	return nil
}

// Reservations implements repositories.IReservationRepository
type Reservations struct{ s *Store }

var _ repositories.IReservationRepository = (*Reservations)(nil)

func (r *Reservations) ListByUser(_ context.Context, userID int64) ([]*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Reservation{}
	for _, res := range r.s.reservations {
		if res.UserID == userID {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReservedDate.Equal(out[j].ReservedDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].ReservedDate.After(out[j].ReservedDate)
	})
	return out, nil
}

func (r *Reservations) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, apperrors.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *Reservations) Create(_ context.Context, reservation *models.Reservation) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation.ID = r.s.nextID()
	cp := *reservation
	r.s.reservations[reservation.ID] = &cp
	return reservation.ID, nil
}

func (r *Reservations) Update(_ context.Context, reservation *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[reservation.ID]
	if !ok {
		return apperrors.ErrReservationNotFound
	}
	res.ClassName = reservation.ClassName
	res.ReservedDate = reservation.ReservedDate
	res.ReservedTime = reservation.ReservedTime
	return nil
}

func (r *Reservations) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[id]; !ok {
		return apperrors.ErrReservationNotFound
	}
	delete(r.s.reservations, id)
	return nil
}

// SetStatus changes a reservation's status directly, standing in for an administrator.
func (r *Reservations) SetStatus(id int64, status models.ReservationStatus) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if res, ok := r.s.reservations[id]; ok {
		res.Status = status
	}
}

// Courses implements repositories.ICourseRepository
type Courses struct{ s *Store }

var _ repositories.ICourseRepository = (*Courses)(nil)

func (r *Courses) withImages(c *models.Course) *models.Course {
	cp := *c
	cp.Images = []*models.CourseImage{}
	for _, img := range r.s.images {
		if img.CourseID == c.ID {
			imgCopy := *img
			cp.Images = append(cp.Images, &imgCopy)
		}
	}
	sort.Slice(cp.Images, func(i, j int) bool { return cp.Images[i].ID < cp.Images[j].ID })
	return &cp
}

func (r *Courses) ListByPublished(_ context.Context, published bool) ([]*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Course{}
	for _, c := range r.s.courses {
		if c.IsPublished == published {
			out = append(out, r.withImages(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Courses) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return r.withImages(c), nil
}

func (r *Courses) classIDTaken(classID string, exceptID int64) bool {
	for _, c := range r.s.courses {
		if c.ClassID == classID && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *Courses) ClassIDExists(_ context.Context, classID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.classIDTaken(classID, 0), nil
}

func (r *Courses) addImage(courseID int64, path string) *models.CourseImage {
	img := &models.CourseImage{ID: r.s.nextID(), CourseID: courseID, Path: path, CreatedAt: r.s.now()}
	r.s.images[img.ID] = img
	return img
}

func (r *Courses) Create(_ context.Context, course *models.Course, imagePaths []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.classIDTaken(course.ClassID, 0) {
		return 0, apperrors.ErrClassIDAlreadyExists
	}
	if len(imagePaths) > 0 {
		primary := imagePaths[0]
		course.ImagePath = &primary
	}
	course.ID = r.s.nextID()
	course.CreatedAt = r.s.now()
	cp := *course
	cp.Images = nil
	r.s.courses[course.ID] = &cp

	course.Images = make([]*models.CourseImage, 0, len(imagePaths))
	for _, p := range imagePaths {
		img := *r.addImage(course.ID, p)
		course.Images = append(course.Images, &img)
	}
	return course.ID, nil
}

func (r *Courses) Update(_ context.Context, course *models.Course, removeImageIDs []int64, newImagePaths []string) ([]*models.CourseImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[course.ID]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	if r.classIDTaken(course.ClassID, course.ID) {
		return nil, apperrors.ErrClassIDAlreadyExists
	}
	c.ClassID = course.ClassID
	c.Description = course.Description
	c.Price = course.Price
	c.DurationMinutes = course.DurationMinutes

	var removed []*models.CourseImage
	for _, id := range removeImageIDs {
		if img, ok := r.s.images[id]; ok && img.CourseID == c.ID {
			removed = append(removed, img)
			delete(r.s.images, id)
		}
	}
	for _, p := range newImagePaths {
		r.addImage(c.ID, p)
	}

	coverGone := c.ImagePath == nil
	for _, img := range removed {
		if c.ImagePath != nil && *c.ImagePath == img.Path {
			coverGone = true
		}
	}
	if coverGone {
		c.ImagePath = nil
		if remaining := r.withImages(c).Images; len(remaining) > 0 {
			p := remaining[0].Path
			c.ImagePath = &p
		}
	}
	return removed, nil
}

func (r *Courses) Delete(_ context.Context, id int64) ([]*models.CourseImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	var removed []*models.CourseImage
	for imgID, img := range r.s.images {
		if img.CourseID == id {
			removed = append(removed, img)
			delete(r.s.images, imgID)
		}
	}
	delete(r.s.courses, id)
	return removed, nil
}

// ImageCount returns the number of image rows of a course
func (r *Courses) ImageCount(courseID int64) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, img := range r.s.images {
		if img.CourseID == courseID {
			n++
		}
	}
	return n
}

// AddDraft stores an unpublished course directly; drafts have no create form.
func (r *Courses) AddDraft(course *models.Course) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	course.ID = r.s.nextID()
	course.CreatedAt = r.s.now()
	course.IsPublished = false
	cp := *course
	r.s.courses[course.ID] = &cp
}
