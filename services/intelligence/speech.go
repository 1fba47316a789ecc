package intelligence

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"mindbloom/models"

	speech "cloud.google.com/go/speech/apiv1"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

const (
	MaxDurationSeconds = 60
	MaxAudioSize       = 5 * 1024 * 1024
	DefaultLanguage    = "en-US"

	wavFormatPCM = 1
)

var (
	ErrInvalidAudio  = errors.New("audio is not a PCM WAV file")
	ErrAudioTooLong  = fmt.Errorf("audio is longer than %d seconds", MaxDurationSeconds)
	ErrAudioTooLarge = fmt.Errorf("audio is larger than %d bytes", MaxAudioSize)
)

// WAVInfo describes the PCM stream inside a WAV file.
type WAVInfo struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	Data          []byte
}

// Duration is the length of the audio in seconds.
func (w *WAVInfo) Duration() float64 {
	bytesPerSecond := float64(w.SampleRate) * float64(w.Channels) * float64(w.BitsPerSample) / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(len(w.Data)) / bytesPerSecond
}

// ParseWAV walks the RIFF chunks of a WAV file and returns its 16-bit PCM
// payload. Chunks other than fmt and data are skipped.
func ParseWAV(data []byte) (*WAVInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrInvalidAudio
	}

	var info WAVInfo
	var haveFmt bool
	r := bytes.NewReader(data[12:])
	for {
		var id [4]byte
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			break
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			break
		}

		switch string(id[:]) {
		case "fmt ":
			if size < 16 {
				return nil, ErrInvalidAudio
			}
			var f struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return nil, ErrInvalidAudio
			}
			info.AudioFormat = f.AudioFormat
			info.Channels = f.NumChannels
			info.SampleRate = f.SampleRate
			info.BitsPerSample = f.BitsPerSample
			haveFmt = true
			if _, err := r.Seek(int64(size-16+size%2), io.SeekCurrent); err != nil {
				return nil, ErrInvalidAudio
			}
		case "data":
			if !haveFmt {
				return nil, ErrInvalidAudio
			}
			n := int(size)
			if n > r.Len() {
				n = r.Len()
			}
			info.Data = make([]byte, n)
			if _, err := r.Read(info.Data); err != nil && n > 0 {
				return nil, ErrInvalidAudio
			}
			return validateWAV(&info)
		default:
			if _, err := r.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return nil, ErrInvalidAudio
			}
		}
	}
	return nil, ErrInvalidAudio
}

func validateWAV(info *WAVInfo) (*WAVInfo, error) {
	if info.AudioFormat != wavFormatPCM || info.BitsPerSample != 16 ||
		info.Channels == 0 || info.SampleRate == 0 || len(info.Data) == 0 {
		return nil, ErrInvalidAudio
	}
	return info, nil
}

// SpeechTranscriber sends LINEAR16 audio to Google Speech-to-Text.
type SpeechTranscriber struct {
	client *speech.Client
	logger *zap.Logger
}

// NewSpeechTranscriber authenticates with a service account file, or with
// application default credentials when the path is empty.
func NewSpeechTranscriber(ctx context.Context, credentialsFile string, logger *zap.Logger) (*SpeechTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpeechTranscriber{client: client, logger: logger}, nil
}

func (t *SpeechTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (*models.Transcription, error) {
	if len(audio) > MaxAudioSize {
		return nil, ErrAudioTooLarge
	}
	info, err := ParseWAV(audio)
	if err != nil {
		return nil, err
	}
	if info.Duration() > MaxDurationSeconds {
		return nil, ErrAudioTooLong
	}
	if language == "" {
		language = DefaultLanguage
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   int32(info.SampleRate),
			LanguageCode:      language,
			AudioChannelCount: int32(info.Channels),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: info.Data},
		},
	}

	resp, err := t.client.Recognize(ctx, req)
	if err != nil {
		t.logger.Error("Speech recognition failed", zap.Error(err))
		return nil, fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
			transcript.WriteString(" ")
		}
	}
	return &models.Transcription{Text: strings.TrimSpace(transcript.String()), Language: language}, nil
}

// Close releases the underlying client.
func (t *SpeechTranscriber) Close() error {
	return t.client.Close()
}
