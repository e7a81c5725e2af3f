package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/innokenty/voicecast/pkg/rtc"
)

// Header represents a WAV file header
type Header struct {
	ChunkSize     uint32
	SampleRate    uint32
	NumChannels   uint16
	BitsPerSample uint16
	DataSize      uint32
}

// Reader reads 16-bit PCM WAV files and converts them to audio frames.
// Stereo input is downmixed to mono by averaging the channels.
type Reader struct {
	file   *os.File
	header Header
}

// NewReader creates a new WAV file reader
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	reader := &Reader{file: file}
	if err := reader.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	return reader, nil
}

// Header returns the WAV file header information
func (r *Reader) Header() Header {
	return r.header
}

// ReadAll reads the entire audio payload into one mono frame.
func (r *Reader) ReadAll() (*rtc.AudioFrame, error) {
	data, err := io.ReadAll(r.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if uint32(len(data)) > r.header.DataSize {
		data = data[:r.header.DataSize]
	}

	channels := int(r.header.NumChannels)
	numSamples := len(data) / 2 / channels
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			v := int16(data[off]) | int16(data[off+1])<<8
			sum += float32(v) / 32768
		}
		samples[i] = sum / float32(channels)
	}

	return &rtc.AudioFrame{
		Samples:    samples,
		SampleRate: int(r.header.SampleRate),
	}, nil
}

// Close closes the WAV file
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadFile reads a whole WAV file into one mono frame.
func ReadFile(filename string) (*rtc.AudioFrame, error) {
	r, err := NewReader(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadAll()
}

// readHeader reads and validates the WAV file header
func (r *Reader) readHeader() error {
	// Read RIFF header
	var riffHeader [12]byte
	if _, err := r.file.Read(riffHeader[:]); err != nil {
		return fmt.Errorf("failed to read RIFF header: %w", err)
	}

	if string(riffHeader[0:4]) != "RIFF" {
		return fmt.Errorf("not a valid RIFF file")
	}

	if string(riffHeader[8:12]) != "WAVE" {
		return fmt.Errorf("not a valid WAVE file")
	}

	r.header.ChunkSize = binary.LittleEndian.Uint32(riffHeader[4:8])

	if err := r.readFmtChunk(); err != nil {
		return err
	}

	if err := r.readDataChunk(); err != nil {
		return err
	}

	if r.header.BitsPerSample != 16 {
		return fmt.Errorf("only 16-bit samples are supported, got %d-bit", r.header.BitsPerSample)
	}

	if r.header.NumChannels != 1 && r.header.NumChannels != 2 {
		return fmt.Errorf("only mono and stereo are supported, got %d channels", r.header.NumChannels)
	}

	return nil
}

// readFmtChunk reads the format chunk
func (r *Reader) readFmtChunk() error {
	for {
		var chunkHeader [8]byte
		if _, err := r.file.Read(chunkHeader[:]); err != nil {
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		if chunkID == "fmt " {
			if chunkSize < 16 {
				return fmt.Errorf("fmt chunk too small: %d bytes", chunkSize)
			}

			var fmtData [16]byte
			if _, err := r.file.Read(fmtData[:]); err != nil {
				return fmt.Errorf("failed to read fmt data: %w", err)
			}

			audioFormat := binary.LittleEndian.Uint16(fmtData[0:2])
			if audioFormat != 1 {
				return fmt.Errorf("only PCM format is supported, got format %d", audioFormat)
			}

			r.header.NumChannels = binary.LittleEndian.Uint16(fmtData[2:4])
			r.header.SampleRate = binary.LittleEndian.Uint32(fmtData[4:8])
			r.header.BitsPerSample = binary.LittleEndian.Uint16(fmtData[14:16])

			// Skip any remaining fmt data
			if chunkSize > 16 {
				if _, err := r.file.Seek(int64(chunkSize-16), io.SeekCurrent); err != nil {
					return fmt.Errorf("failed to skip fmt data: %w", err)
				}
			}

			return nil
		}

		// Skip unknown chunk
		if _, err := r.file.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("failed to skip chunk: %w", err)
		}
	}
}

// readDataChunk finds the data chunk and positions the file pointer at the start of audio data
func (r *Reader) readDataChunk() error {
	for {
		var chunkHeader [8]byte
		if _, err := r.file.Read(chunkHeader[:]); err != nil {
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		if chunkID == "data" {
			r.header.DataSize = chunkSize
			// File pointer is now at the start of audio data
			return nil
		}

		// Skip unknown chunk
		if _, err := r.file.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("failed to skip chunk: %w", err)
		}
	}
}
