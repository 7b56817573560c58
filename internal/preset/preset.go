package preset

// Section groups built-in presets for display
type Section string

// Sections of the built-in catalogue
const (
	SectionStaples Section = "Productivity Staples"
	SectionStudy   Section = "Study & Learning"
	SectionWork    Section = "Work & Creative"
	SectionScience Section = "Science-Based"
)

// DefaultID is the preset selected on first run and after the selected
// custom preset is deleted
const DefaultID = "classic"

const (
	maxNameLength   = 80
	defaultName     = "Custom Preset"
	minWorkMinutes  = 1
	maxWorkMinutes  = 180
	minBreakMinutes = 1
	maxBreakMinutes = 60
)

// Preset is a named work/break pair. It is read-only input to the timer.
type Preset struct {
	ID                   string  `json:"id" toml:"id"`
	Name                 string  `json:"name" toml:"name"`
	WorkDurationMinutes  int     `json:"workDurationMinutes" toml:"work_duration_minutes"`
	BreakDurationMinutes int     `json:"breakDurationMinutes" toml:"break_duration_minutes"`
	Description          string  `json:"description,omitempty" toml:"description,omitempty"`
	Section              Section `json:"section,omitempty" toml:"-"`
	BuiltIn              bool    `json:"builtIn" toml:"-"`
}

// WorkSeconds returns the work session length in seconds
func (p Preset) WorkSeconds() int {
	return p.WorkDurationMinutes * 60
}

// BreakSeconds returns the break session length in seconds
func (p Preset) BreakSeconds() int {
	return p.BreakDurationMinutes * 60
}

var builtIns = []Preset{
	{ID: "classic", Name: "Classic Pomodoro", WorkDurationMinutes: 25, BreakDurationMinutes: 5, Description: "Everyday tasks, studying, & light work", Section: SectionStaples},
	{ID: "deep", Name: "Deep Work", WorkDurationMinutes: 90, BreakDurationMinutes: 20, Description: "General creative or analytical work", Section: SectionStaples},
	{ID: "gentle", Name: "Gentle Start", WorkDurationMinutes: 15, BreakDurationMinutes: 5, Description: "Easing into tasks", Section: SectionStaples},
	{ID: "studyBurst", Name: "Study Burst", WorkDurationMinutes: 40, BreakDurationMinutes: 10, Description: "Reading comprehension or memorization", Section: SectionStudy},
	{ID: "examCram", Name: "Exam Cram", WorkDurationMinutes: 60, BreakDurationMinutes: 10, Description: "Studying large volumes quickly", Section: SectionStudy},
	{ID: "reviewCycle", Name: "Review Cycle", WorkDurationMinutes: 30, BreakDurationMinutes: 5, Description: "Reviewing notes or flashcards", Section: SectionStudy},
	{ID: "readingFocus", Name: "Reading Focus", WorkDurationMinutes: 45, BreakDurationMinutes: 15, Description: "Deep reading or research", Section: SectionStudy},
	{ID: "codingSprint", Name: "Coding Sprint", WorkDurationMinutes: 52, BreakDurationMinutes: 17, Description: "Programming or debugging", Section: SectionWork},
	{ID: "designFlow", Name: "Design Flow", WorkDurationMinutes: 70, BreakDurationMinutes: 10, Description: "Creative design sessions", Section: SectionWork},
	{ID: "writerBlockBuster", Name: "Writer Block Buster", WorkDurationMinutes: 45, BreakDurationMinutes: 15, Description: "Writing, journaling, or brainstorming", Section: SectionWork},
	{ID: "adminCycle", Name: "Admin Cycle", WorkDurationMinutes: 30, BreakDurationMinutes: 5, Description: "Emails, scheduling, or smaller administrative tasks", Section: SectionWork},
	{ID: "ultradian", Name: "Ultradian Rhythm Cycle", WorkDurationMinutes: 90, BreakDurationMinutes: 30, Description: "Long projects, aligned with natural brain energy cycles", Section: SectionScience},
	{ID: "twoHour", Name: "Two-Hour Macro Block", WorkDurationMinutes: 100, BreakDurationMinutes: 20, Description: "Multi-step creative or technical tasks", Section: SectionScience},
	{ID: "cognitiveFlex", Name: "Cognitive Flex Cycle", WorkDurationMinutes: 35, BreakDurationMinutes: 7, Description: "High cognitive-load tasks", Section: SectionScience},
}

// BuiltIns returns a copy of the built-in catalogue
func BuiltIns() []Preset {
	out := make([]Preset, len(builtIns))
	for i, p := range builtIns {
		p.BuiltIn = true
		out[i] = p
	}
	return out
}

// BuiltIn looks up a built-in preset by id
func BuiltIn(id string) (Preset, bool) {
	for _, p := range builtIns {
		if p.ID == id {
			p.BuiltIn = true
			return p, true
		}
	}
	return Preset{}, false
}

// Default returns the preset used when nothing else is selected
func Default() Preset {
	p, _ := BuiltIn(DefaultID)
	return p
}
