package api

const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TextCheckRequest is the body of POST /api/v1/checks/text.
type TextCheckRequest struct {
	Text string `json:"text" validate:"required"`
}

// URLCheckRequest is the body of POST /api/v1/checks/url.
type URLCheckRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// DuplicatePair is one pair of near-identical frames.
type DuplicatePair struct {
	PositionA int     `json:"positionA"`
	PositionB int     `json:"positionB"`
	Score     float64 `json:"score"`
}

// StageTiming reports one stage duration in milliseconds.
type StageTiming struct {
	Stage      string  `json:"stage"`
	DurationMs float64 `json:"durationMs"`
}

// TriggerHit is a flagged phrase found in the evidence.
type TriggerHit struct {
	Language string `json:"language"`
	Word     string `json:"word"`
	Snippet  string `json:"snippet"`
}

// Verification is the oracle outcome.
type Verification struct {
	Verdict string `json:"verdict"`
	// Confidence is always null; the oracle does not report one.
	Confidence *float64 `json:"confidence"`
	Cached     bool     `json:"cached"`
	Failed     bool     `json:"failed"`
}

// FrameTextStats summarizes on-screen text recognition.
type FrameTextStats struct {
	FramesScanned  int `json:"framesScanned"`
	FramesWithText int `json:"framesWithText"`
	FramesFailed   int `json:"framesFailed"`
}

// CheckResponse is the transport representation of a pipeline report.
type CheckResponse struct {
	RunID           string          `json:"runId"`
	RequestID       string          `json:"requestId,omitempty"`
	Kind            string          `json:"kind"`
	Source          string          `json:"source"`
	State           string          `json:"state"`
	History         []string        `json:"history"`
	Failure         string          `json:"failure,omitempty"`
	FailedIn        string          `json:"failedIn,omitempty"`
	Error           string          `json:"error,omitempty"`
	StartedAt       string          `json:"startedAt,omitempty"`
	ElapsedMs       float64         `json:"elapsedMs"`
	Timings         []StageTiming   `json:"timings"`
	Thumbnail       string          `json:"thumbnail,omitempty"`
	DuplicateFrames int             `json:"duplicateFrames"`
	Duplicates      []DuplicatePair `json:"duplicates"`
	Transcript      string          `json:"transcript"`
	SubtitleText    string          `json:"subtitleText"`
	FrameText       string          `json:"frameText"`
	FrameTextStats  FrameTextStats  `json:"frameTextStats"`
	Language        string          `json:"language"`
	Triggers        []TriggerHit    `json:"triggers"`
	Prompt          string          `json:"prompt"`
	Verification    Verification    `json:"verification"`
	NothingToVerify bool            `json:"nothingToVerify,omitempty"`
}

// ErrorResponse is returned for rejected requests and failed runs.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Details   []string       `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Report    *CheckResponse `json:"report,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
