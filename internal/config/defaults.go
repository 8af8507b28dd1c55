package config

const (
	defaultConfigPath            = "~/.config/vidcheck/config.toml"
	defaultWorkDir               = "~/.local/share/vidcheck/work"
	defaultLogDir                = "~/.local/share/vidcheck/logs"
	defaultDuplicateStride       = 5
	defaultTextStride            = 30
	defaultMaxFrames             = 2000
	defaultDuplicateStrategy     = "ssim"
	defaultDuplicateThreshold    = 0.97
	defaultSSIMWindow            = 7
	defaultDuplicateScaleWidth   = 320
	defaultOCRBinary             = "tesseract"
	defaultOCRLanguages          = "eng+tel+hin"
	defaultOCRWorkers            = 4
	defaultOCRTimeoutSeconds     = 30
	defaultTranscriptionModel    = "base"
	defaultVADMethod             = "silero"
	defaultDownloadBinary        = "yt-dlp"
	defaultDownloadMaxHeight     = 360
	defaultAudioQuality          = "192K"
	defaultOracleBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultOracleModel           = "google/gemini-2.5-flash"
	defaultOracleReferer         = "https://github.com/vidcheck/vidcheck"
	defaultOracleTitle           = "vidcheck"
	defaultOracleTimeoutSeconds  = 60
	defaultCacheLRUSize          = 256
	defaultCacheDriver           = "sqlite"
	defaultTriggersPath          = "~/.config/vidcheck/trigger_words.json"
	defaultAPIBind               = "127.0.0.1:7590"
	defaultAPIMaxUploadMiB       = 512
	defaultAPIRequestTimeoutSecs = 900
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
		},
		Sampling: Sampling{
			DuplicateStride: defaultDuplicateStride,
			TextStride:      defaultTextStride,
			MaxFrames:       defaultMaxFrames,
		},
		Duplicates: Duplicates{
			Strategy:   defaultDuplicateStrategy,
			Threshold:  defaultDuplicateThreshold,
			Window:     defaultSSIMWindow,
			ScaleWidth: defaultDuplicateScaleWidth,
		},
		OCR: OCR{
			Binary:         defaultOCRBinary,
			Languages:      defaultOCRLanguages,
			Workers:        defaultOCRWorkers,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
		},
		Transcription: Transcription{
			Model:     defaultTranscriptionModel,
			VADMethod: defaultVADMethod,
		},
		Download: Download{
			Binary:            defaultDownloadBinary,
			MaxHeight:         defaultDownloadMaxHeight,
			SubtitleLanguages: []string{"en"},
			AudioQuality:      defaultAudioQuality,
		},
		Oracle: Oracle{
			BaseURL:        defaultOracleBaseURL,
			Model:          defaultOracleModel,
			Referer:        defaultOracleReferer,
			Title:          defaultOracleTitle,
			TimeoutSeconds: defaultOracleTimeoutSeconds,
		},
		Cache: Cache{
			Enabled: true,
			LRUSize: defaultCacheLRUSize,
			Driver:  defaultCacheDriver,
		},
		Triggers: Triggers{
			Path: defaultTriggersPath,
		},
		API: API{
			Bind:           defaultAPIBind,
			MaxUploadMiB:   defaultAPIMaxUploadMiB,
			RequestTimeout: defaultAPIRequestTimeoutSecs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
