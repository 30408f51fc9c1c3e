package config

const (
	defaultWorkRoot         = "~/.local/share/autopost/work"
	defaultStateDir         = "~/.local/share/autopost/state"
	defaultLogDir           = "~/.local/share/autopost/logs"
	defaultAPIBind          = "127.0.0.1:7519"
	defaultScheduleHour     = 12
	defaultScheduleMinute   = 0
	defaultSourcePrefix     = "incoming/"
	defaultDestPrefix       = "published/"
	defaultTransformTimeout = 600
	defaultFFmpegBinary     = "ffmpeg"
	defaultProbeBinary      = "ffprobe"
	defaultShortWidth       = 1080
	defaultShortHeight      = 1920
	defaultVideoCodec       = "libx264"
	defaultAudioCodec       = "aac"
	defaultPreset           = "veryfast"
	defaultCRF              = 23
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkRoot: defaultWorkRoot,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Schedule: Schedule{
			Hour:   defaultScheduleHour,
			Minute: defaultScheduleMinute,
		},
		Pipeline: Pipeline{
			SourcePrefix:     defaultSourcePrefix,
			DestPrefix:       defaultDestPrefix,
			TransformTimeout: defaultTransformTimeout,
		},
		FFmpeg: FFmpeg{
			Binary:      defaultFFmpegBinary,
			ProbeBinary: defaultProbeBinary,
			ShortWidth:  defaultShortWidth,
			ShortHeight: defaultShortHeight,
			VideoCodec:  defaultVideoCodec,
			AudioCodec:  defaultAudioCodec,
			Preset:      defaultPreset,
			CRF:         defaultCRF,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
