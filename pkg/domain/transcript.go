package domain

// StrategyTag identifies which acquisition strategy produced a transcript.
type StrategyTag string

const (
	// StrategyFeedDeclared means the transcript was fetched from a URL the
	// publisher declared in feed metadata (e.g., a podcast:transcript tag).
	StrategyFeedDeclared StrategyTag = "feed_declared"

	// StrategyPageScraped means the transcript was heuristically extracted
	// from the episode/article page HTML.
	StrategyPageScraped StrategyTag = "page_scraped"

	// StrategyMirrorCaption means the transcript came from the caption track
	// of a video mirror of the same content.
	StrategyMirrorCaption StrategyTag = "mirror_caption"

	// StrategySpeechToText means the transcript was produced by downloading
	// the audio and running it through an ASR service.
	StrategySpeechToText StrategyTag = "speech_to_text"

	// StrategyManual marks transcripts entered by an operator.
	StrategyManual StrategyTag = "manual"

	// StrategyUnavailable marks content for which every strategy failed.
	StrategyUnavailable StrategyTag = "unavailable"
)

// Confidence levels for acquired transcripts. Confidence is determined by the
// strategy that produced the transcript, not by inspecting its content.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// MinTranscriptLength is the minimum number of characters a candidate
// transcript must contain to count as a successful acquisition. Shorter text
// is treated as a non-match rather than a low-confidence success.
const MinTranscriptLength = 500

// TranscriptSegment is a single unit of transcript text. Start and Duration
// are nil for sources without a time axis (scraped pages, articles), where
// each segment is a paragraph or sentence instead of a timed cue.
type TranscriptSegment struct {
	Start    *float64 `bson:"start,omitempty" json:"start,omitempty"`
	Duration *float64 `bson:"duration,omitempty" json:"duration,omitempty"`
	Text     string   `bson:"text" json:"text"`
}

// Transcript is the canonical normalized transcript produced by any strategy.
type Transcript struct {
	// FullText is the complete transcript text, non-empty for any
	// successfully acquired transcript.
	FullText string `bson:"full_text" json:"fullText"`

	// Segments are the transcript units, timed when the source provides a
	// time axis (VTT cues, caption tracks, ASR output).
	Segments []TranscriptSegment `bson:"segments" json:"segments"`

	// Language is an ISO language code. Defaults to "en" when the source
	// does not declare one.
	Language string `bson:"language" json:"language"`

	// Source records which strategy produced this transcript.
	Source StrategyTag `bson:"source" json:"source"`

	// WordCount is the whitespace-delimited token count of FullText.
	WordCount int `bson:"word_count" json:"wordCount"`

	// Confidence is "high", "medium" or "low" depending on Source.
	Confidence string `bson:"confidence" json:"confidence"`
}

// AcquisitionRequest bundles the optional hints one content item carries.
// Each hint gates whether the corresponding strategy is attempted at all; an
// absent hint is recorded as a skipped attempt, never as an error.
type AcquisitionRequest struct {
	// ContentID is used only for correlation in logs and persistence.
	ContentID string

	// TranscriptURL is a publisher-declared transcript location, if any.
	TranscriptURL string

	// PageURL is the canonical episode/article page, if any.
	PageURL string

	// VideoID identifies a mirror of this content on a video platform with
	// native captions, if one is known.
	VideoID string

	// AudioURL points at the raw audio enclosure, if any.
	AudioURL string

	// AudioDurationSecs is the declared audio duration in seconds, used for
	// cost gating before speech-to-text is attempted. Zero means unknown.
	AudioDurationSecs float64
}

// AttemptRecord describes one strategy invocation (or skip) within a single
// acquisition call, in invocation order.
type AttemptRecord struct {
	Strategy StrategyTag `bson:"strategy" json:"strategy"`
	Success  bool        `bson:"success" json:"success"`
	Error    string      `bson:"error,omitempty" json:"error,omitempty"`
}

// AcquisitionResult is the complete outcome of one acquisition call. A failed
// acquisition (Success=false, Transcript=nil) is a normal terminal state: the
// attempts log records why each strategy did not produce a transcript.
type AcquisitionResult struct {
	Success    bool            `bson:"success" json:"success"`
	Transcript *Transcript     `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Attempts   []AttemptRecord `bson:"attempts" json:"attempts"`
}
