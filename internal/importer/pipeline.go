package importer

import "github.com/noah-isme/educentral-admin-api/internal/models"

// Pipeline turns parsed rows into dedup candidates for one entity.
type Pipeline struct {
	normalizer *Normalizer
	ids        IDGenerator
	policy     Policy
}

// NewPipeline wires a normalizer, an id generator and a row policy.
func NewPipeline(normalizer *Normalizer, ids IDGenerator, policy Policy) *Pipeline {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	if ids == nil {
		ids = NewSequenceGenerator(nil)
	}
	if policy != Strict {
		policy = Lenient
	}
	return &Pipeline{normalizer: normalizer, ids: ids, policy: policy}
}

// Policy reports the configured row policy.
func (p *Pipeline) Policy() Policy { return p.policy }

// Users builds user candidates.
func (p *Pipeline) Users(rows []Row, d UserDefaults) []Candidate[models.UserRecord] {
	out := make([]Candidate[models.UserRecord], 0, len(rows))
	for i, row := range rows {
		user := p.normalizer.User(row, d)
		user.ID = Resolve(user.ID, "", user.Role.IDPrefix(), p.ids)
		out = append(out, Candidate[models.UserRecord]{
			Row:     i + 1,
			ID:      user.ID,
			Record:  user,
			Keys:    UserKeys(user),
			Missing: p.policy.Check(row, RequiredUserColumns),
		})
	}
	return out
}

// Courses builds course candidates. The code doubles as id when no id is given.
func (p *Pipeline) Courses(rows []Row, d CourseDefaults) []Candidate[models.Course] {
	out := make([]Candidate[models.Course], 0, len(rows))
	for i, row := range rows {
		course := p.normalizer.Course(row, d)
		course.ID = Resolve(course.ID, course.Code, PrefixCourse, p.ids)
		out = append(out, Candidate[models.Course]{
			Row:     i + 1,
			ID:      course.ID,
			Record:  course,
			Keys:    CourseKeys(course),
			Missing: p.policy.Check(row, RequiredCourseColumns),
		})
	}
	return out
}

// Events builds event candidates.
func (p *Pipeline) Events(rows []Row, d EventDefaults) []Candidate[models.Event] {
	out := make([]Candidate[models.Event], 0, len(rows))
	for i, row := range rows {
		event := p.normalizer.Event(row, d)
		event.ID = Resolve(event.ID, "", PrefixEvent, p.ids)
		out = append(out, Candidate[models.Event]{
			Row:     i + 1,
			ID:      event.ID,
			Record:  event,
			Keys:    EventKeys(event),
			Missing: p.policy.Check(row, RequiredEventColumns),
		})
	}
	return out
}

// UserKeys are the dedup keys of a user.
func UserKeys(u models.UserRecord) []string { return []string{IDKey(u.ID)} }

// CourseKeys are the dedup keys of a course: its id and its code.
func CourseKeys(c models.Course) []string { return []string{IDKey(c.ID), CodeKey(c.Code)} }

// EventKeys are the dedup keys of an event.
func EventKeys(e models.Event) []string { return []string{IDKey(e.ID)} }
