// Package registry holds the static course registry: the ordered mapping
// from Steam leaderboard identifiers to course names. It defines which
// leaderboards are harvested and in what order, loaded once at startup
// and never refreshed during operation.
package registry

// Course pairs a Steam leaderboard id with its course name.
type Course struct {
	LeaderboardID int64
	Name          string
}

// defaultCourses lists the game's tracked courses in harvest order.
var defaultCourses = []Course{ //nolint:gochecknoglobals // static registry data
	{LeaderboardID: 3761925, Name: "A Leisurely Cruise"},
	{LeaderboardID: 3761930, Name: "Speed Run Around The Spires"},
	{LeaderboardID: 3761934, Name: "Around The Station"},
	{LeaderboardID: 3761938, Name: "Death Valley"},
	{LeaderboardID: 3761941, Name: "Canyon Sprint"},
	{LeaderboardID: 3761945, Name: "Snake Pit"},
	{LeaderboardID: 3761949, Name: "Long Road"},
	{LeaderboardID: 3761953, Name: "Hide And Seek"},
	{LeaderboardID: 3761957, Name: "Thread The Needle"},
	{LeaderboardID: 3761960, Name: "Ups And Downs"},
	{LeaderboardID: 3761964, Name: "Limelight"},
	{LeaderboardID: 3761968, Name: "Crest Loop"},
	{LeaderboardID: 3761972, Name: "You Might Wanna Hold Back A Bit"},
	{LeaderboardID: 3761976, Name: "Slalom"},
}

// Registry is an ordered, read-only set of courses.
type Registry struct {
	courses []Course
}

// Default returns the built-in course registry.
func Default() *Registry {
	return New(defaultCourses)
}

// New creates a registry from an ordered course list. The slice is copied
// so callers cannot mutate the registry afterwards.
func New(courses []Course) *Registry {
	cp := make([]Course, len(courses))
	copy(cp, courses)
	return &Registry{courses: cp}
}

// Courses returns the courses in harvest order.
func (r *Registry) Courses() []Course {
	cp := make([]Course, len(r.courses))
	copy(cp, r.courses)
	return cp
}

// Len returns the number of registered courses.
func (r *Registry) Len() int {
	return len(r.courses)
}
