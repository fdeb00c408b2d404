package config

// StorageKeyStruct is the registry of persistent key-value store keys.
// The key names are stable and must not change: they are the on-disk
// contract with existing deployments, including two legacy keys that the
// store migrates away from on first load.
type StorageKeyStruct struct {
	Exams      string
	Results    string
	TakenExams string
	Admin      string

	// Legacy keys from the single-exam era. Read once during migration,
	// then deleted (LegacyQuestions) or kept for the grandfathered
	// duplicate-attempt check (LegacyTakenEmails).
	LegacyQuestions   string
	LegacyTakenEmails string
}

var StorageKey = &StorageKeyStruct{
	Exams:             "exam_portal_exams",
	Results:           "exam_portal_results",
	TakenExams:        "exam_portal_taken_exams_v2",
	Admin:             "exam_portal_admin",
	LegacyQuestions:   "exam_portal_questions",
	LegacyTakenEmails: "exam_portal_taken_emails",
}

// WorkerKeyStruct holds Redis queue and channel names used by background
// workers and the live results feed.
type WorkerKeyStruct struct {
	SyncResultsQueue   string
	ResultsFeedChannel string
}

var WorkerKey = &WorkerKeyStruct{
	SyncResultsQueue:   "sync_results_queue",
	ResultsFeedChannel: "results_feed",
}
