package model

// Stats 学习统计概览
type Stats struct {
	TotalCourses      int     `json:"totalCourses"`
	InProgressCourses int     `json:"inProgressCourses"`
	CompletedCourses  int     `json:"completedCourses"`
	TotalHours        float64 `json:"totalHours"`
	AverageProgress   int     `json:"averageProgress"`

	// 仅在 TotalCourses > 0 时存在
	Derived *DerivedStats `json:"derived,omitempty"`
}

type DerivedStats struct {
	CompletionRate        float64 `json:"completionRate"`
	AverageHoursPerCourse float64 `json:"averageHoursPerCourse"`
}

// StatsOverview 统计页返回的数据，附带激励文案
type StatsOverview struct {
	Stats
	Headline string `json:"headline"`
	Subline  string `json:"subline"`
}
