package config

const (
	defaultDataDir           = "~/.local/share/lingopod"
	defaultAudioDir          = "~/.local/share/lingopod/audio"
	defaultLogDir            = "~/.local/share/lingopod/logs"
	defaultAPIBind           = "127.0.0.1:8080"
	defaultSourceLanguage    = "en"
	defaultTargetLanguage    = "pt"
	defaultMinWords          = 6
	defaultMaxWords          = 15
	defaultMergeOverflow     = 5
	defaultDownloaderBinary  = "yt-dlp"
	defaultDownloaderTimeout = 1800
	defaultWhisperBinary     = "whisper"
	defaultWhisperModel      = "base"
	defaultTranslatorBaseURL = "http://127.0.0.1:5000"
	defaultTranslatorTimeout = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			AudioDir: defaultAudioDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Languages: Languages{
			Source: defaultSourceLanguage,
			Target: defaultTargetLanguage,
		},
		Segmenter: Segmenter{
			MinWords:      defaultMinWords,
			MaxWords:      defaultMaxWords,
			MergeOverflow: defaultMergeOverflow,
		},
		Downloader: Downloader{
			Binary:         defaultDownloaderBinary,
			TimeoutSeconds: defaultDownloaderTimeout,
		},
		Whisper: Whisper{
			Binary: defaultWhisperBinary,
			Model:  defaultWhisperModel,
		},
		Translator: Translator{
			BaseURL:        defaultTranslatorBaseURL,
			TimeoutSeconds: defaultTranslatorTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
