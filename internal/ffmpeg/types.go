package ffmpeg

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
type ProgressFunc func(*Progress)

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)

// ExtractOptions describes one frame-bounded extraction pass
type ExtractOptions struct {
	Input string
	// StartPTS is the presentation timestamp of the first wanted frame,
	// in seconds; seeked on the input side for frame accuracy
	StartPTS float64
	// Frames is the exact number of frames to encode
	Frames int
	// Duration bounds the audio stream; video is bounded by Frames
	Duration time.Duration
	// Filters is the -vf chain applied before encoding
	Filters []string
	// WithAudio maps the source audio for the same range
	WithAudio bool

	VideoCodec string
	AudioCodec string
	CRF        int
	Preset     string

	Output       string
	ProgressFunc ProgressFunc
}
