package domain

// Dashboard is the admin home page summary.
type Dashboard struct {
	MembershipApplications ApplicationCounts         `json:"membership_applications"`
	SpecialistApplications ApplicationCounts         `json:"specialist_applications"`
	Members                MemberStats               `json:"members"`
	VisibleSpecialists     int                       `json:"visible_specialists"`
	ActiveSubscribers      int                       `json:"active_subscribers"`
	Newsletters            map[NewsletterStatus]int  `json:"newsletters"`
	Publications           map[PublicationStatus]int `json:"publications"`
}

// ChangeEvent is what the database broadcasts on every table write.
type ChangeEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     string `json:"id"`
}
