package model

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type MediaKind string

const (
	KindImage   MediaKind = "image"
	KindVideo   MediaKind = "video"
	KindAudio   MediaKind = "audio"
	KindUnknown MediaKind = "unknown"
)

type MediaFile struct {
	Path         string    `json:"path"`
	Ext          string    `json:"ext"`
	Kind         MediaKind `json:"kind"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

type MetadataSummary struct {
	HasGPS      bool `json:"has_gps"`
	HasAuthor   bool `json:"has_author"`
	HasAIMarker bool `json:"has_ai_marker"`
}

type RiskTag string

const (
	TagGPS    RiskTag = "gps"
	TagAuthor RiskTag = "author"
	TagAI     RiskTag = "ai"
)

type RiskScore struct {
	Score    int       `json:"score"`
	Details  []RiskTag `json:"details"`
	Severity RiskLevel `json:"severity"`
}

// Surfaced reports whether the score is worth listing in a report.
func (r RiskScore) Surfaced() bool {
	return r.Severity == RiskMedium || r.Severity == RiskHigh
}

type HighRiskFile struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Score    int       `json:"score"`
	Severity RiskLevel `json:"severity"`
	Details  []RiskTag `json:"details"`
}

type ScanReport struct {
	TotalFiles      int            `json:"total_files"`
	ExtensionCounts map[string]int `json:"extension_counts"`
	GPSCount        int            `json:"gps_count"`
	AuthorCount     int            `json:"author_count"`
	AICount         int            `json:"ai_count"`
	HighRiskFiles   []HighRiskFile `json:"high_risk_files"`
}

type CleanStrategy string

const (
	StrategyAuto         CleanStrategy = "auto"
	StrategyFresh        CleanStrategy = "fresh"
	StrategyOverwrite    CleanStrategy = "overwrite"
	StrategyDifferential CleanStrategy = "differential"
)

type CleanMode string

const (
	ModeSmart CleanMode = "smart"
	ModeFull  CleanMode = "full"
)

type CleanPair struct {
	Source    string `json:"source"`
	Dest      string `json:"dest"`
	SizeBytes int64  `json:"size_bytes"`
}

type CleanPlan struct {
	Strategy   CleanStrategy `json:"strategy"`
	SourceRoot string        `json:"source_root"`
	DestRoot   string        `json:"dest_root"`
	Pairs      []CleanPair   `json:"pairs"`

	// Skipped holds differential pairs whose destination is up to date.
	Skipped []CleanPair `json:"skipped"`
}

// CleanMethod names the technique that produced a destination file.
type CleanMethod string

const (
	MethodExifRewrite CleanMethod = "exif_rewrite"
	MethodReencode    CleanMethod = "reencode"
	MethodRemux       CleanMethod = "remux"
	MethodTranscode   CleanMethod = "transcode"
	MethodID3Strip    CleanMethod = "id3_strip"
	MethodCopy        CleanMethod = "copy"
)

type CleanResult struct {
	Source    string      `json:"source"`
	Dest      string      `json:"dest"`
	Succeeded bool        `json:"succeeded"`
	Method    CleanMethod `json:"method"`
	Error     string      `json:"error,omitempty"`
}

type CleanSummary struct {
	Planned   int `json:"planned"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// ProgressEvent is emitted once per processed file, in walk order.
type ProgressEvent struct {
	Index  int          `json:"index"`
	Total  int          `json:"total"`
	Path   string       `json:"path"`
	Score  *RiskScore   `json:"score,omitempty"`
	Result *CleanResult `json:"result,omitempty"`
}

type ScanResult struct {
	SchemaVersion string     `json:"schema_version"`
	Command       string     `json:"command"`
	Timestamp     time.Time  `json:"timestamp"`
	DurationMS    int64      `json:"duration_ms"`
	Root          string     `json:"root"`
	Cancelled     bool       `json:"cancelled,omitempty"`
	Report        ScanReport `json:"report"`
}

type CleanCommandResult struct {
	SchemaVersion string        `json:"schema_version"`
	Command       string        `json:"command"`
	Timestamp     time.Time     `json:"timestamp"`
	DurationMS    int64         `json:"duration_ms"`
	DryRun        bool          `json:"dry_run,omitempty"`
	Cancelled     bool          `json:"cancelled,omitempty"`
	Mode          CleanMode     `json:"mode"`
	Plan          CleanPlan     `json:"plan"`
	Summary       CleanSummary  `json:"summary"`
	Results       []CleanResult `json:"results,omitempty"`
}

type DumpResult struct {
	SchemaVersion string          `json:"schema_version"`
	Command       string          `json:"command"`
	Timestamp     time.Time       `json:"timestamp"`
	DurationMS    int64           `json:"duration_ms"`
	Path          string          `json:"path"`
	Summary       MetadataSummary `json:"summary"`
	Risk          RiskScore       `json:"risk"`
	Text          string          `json:"text"`
}

type CompareResult struct {
	SchemaVersion string    `json:"schema_version"`
	Command       string    `json:"command"`
	Timestamp     time.Time `json:"timestamp"`
	DurationMS    int64     `json:"duration_ms"`
	Original      string    `json:"original"`
	Cleaned       string    `json:"cleaned,omitempty"`
	Before        string    `json:"before"`
	After         string    `json:"after"`
}

type DiagnoseEntry struct {
	Path      string   `json:"path"`
	Lines     []string `json:"lines"`
	Truncated bool     `json:"truncated,omitempty"`
}

type DiagnoseResult struct {
	SchemaVersion string          `json:"schema_version"`
	Command       string          `json:"command"`
	Timestamp     time.Time       `json:"timestamp"`
	DurationMS    int64           `json:"duration_ms"`
	Root          string          `json:"root"`
	Entries       []DiagnoseEntry `json:"entries"`
}

type OperationLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	PlanID     string    `json:"plan_id"`
	Command    string    `json:"command"`
	Action     string    `json:"action"`
	Strategy   string    `json:"strategy"`
	Mode       string    `json:"mode"`
	Path       string    `json:"path"`
	Dest       string    `json:"dest"`
	Method     string    `json:"method"`
	SizeBytes  int64     `json:"size_bytes"`
	Result     string    `json:"result"`
	Error      string    `json:"error"`
	DurationMS int64     `json:"duration_ms"`
	DryRun     bool      `json:"dry_run"`
}
