package model

// Leadership categories in display priority.
const (
	LeadershipManagement = "management"
	LeadershipPart1      = "part1"
	LeadershipPart2      = "part2"
	LeadershipPart3      = "part3"
)

// LeadershipCategories lists categories from highest to lowest display priority.
var LeadershipCategories = []string{
	LeadershipManagement,
	LeadershipPart1,
	LeadershipPart2,
	LeadershipPart3,
}

// LeadershipPriority returns the display rank of category, unknown ones sort last.
func LeadershipPriority(category string) int {
	for i, c := range LeadershipCategories {
		if c == category {
			return i
		}
	}

	return len(LeadershipCategories)
}

// IsLeadershipCategory reports whether category is known.
func IsLeadershipCategory(category string) bool {
	return LeadershipPriority(category) < len(LeadershipCategories)
}

// LeadershipMember is one person on the professional page.
type LeadershipMember struct {
	Meta
	NameKo       string   `json:"nameKo"`
	NameEn       string   `json:"nameEn"`
	PositionKo   string   `json:"positionKo"`
	PositionEn   string   `json:"positionEn"`
	Category     string   `json:"category"`
	ExperienceKo []string `json:"experienceKo"`
	ExperienceEn []string `json:"experienceEn"`
	EducationKo  []string `json:"educationKo"`
	EducationEn  []string `json:"educationEn"`
	Image        string   `json:"image"`
}
