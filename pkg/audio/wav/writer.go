package wav

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/innokenty/voicecast/pkg/rtc"
)

// Writer writes 16-bit PCM mono WAV files.
type Writer struct {
	file           *os.File
	sampleRate     uint32
	samplesWritten uint32
}

// NewWriter creates a new WAV file writer.
func NewWriter(filename string, sampleRate int) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create WAV file: %w", err)
	}

	writer := &Writer{
		file:       file,
		sampleRate: uint32(sampleRate),
	}

	// Write header (we'll update it when we close)
	if err := writer.writeHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	return writer, nil
}

// WriteFrame appends the frame's samples, converted to 16-bit PCM.
func (w *Writer) WriteFrame(frame *rtc.AudioFrame) error {
	data := frame.Int16Bytes()
	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	w.samplesWritten += uint32(len(frame.Samples))
	return nil
}

// WriteSamples appends raw float32 samples.
func (w *Writer) WriteSamples(samples []float32) error {
	frame := &rtc.AudioFrame{Samples: samples, SampleRate: int(w.sampleRate)}
	return w.WriteFrame(frame)
}

// Close finalizes the WAV file by updating the header with correct sizes.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}

	dataSize := w.samplesWritten * 2
	chunkSize := dataSize + 36

	if _, err := w.file.Seek(4, 0); err != nil {
		return fmt.Errorf("failed to seek to chunk size: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, chunkSize); err != nil {
		return fmt.Errorf("failed to write chunk size: %w", err)
	}

	if _, err := w.file.Seek(40, 0); err != nil {
		return fmt.Errorf("failed to seek to data size: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, dataSize); err != nil {
		return fmt.Errorf("failed to write data size: %w", err)
	}

	err := w.file.Close()
	w.file = nil
	return err
}

// WriteFile writes a whole frame to filename in one call.
func WriteFile(filename string, frame *rtc.AudioFrame) error {
	w, err := NewWriter(filename, frame.SampleRate)
	if err != nil {
		return err
	}
	if err := w.WriteFrame(frame); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// writeHeader writes the initial WAV header.
func (w *Writer) writeHeader() error {
	// RIFF header
	if _, err := w.file.WriteString("RIFF"); err != nil {
		return err
	}

	// Chunk size (will be updated in Close)
	if err := binary.Write(w.file, binary.LittleEndian, uint32(0)); err != nil {
		return err
	}

	if _, err := w.file.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk
	if _, err := w.file.WriteString("fmt "); err != nil {
		return err
	}

	if err := binary.Write(w.file, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}

	// Audio format (PCM = 1)
	if err := binary.Write(w.file, binary.LittleEndian, uint16(1)); err != nil {
		return err
	}

	// Mono
	if err := binary.Write(w.file, binary.LittleEndian, uint16(1)); err != nil {
		return err
	}

	if err := binary.Write(w.file, binary.LittleEndian, w.sampleRate); err != nil {
		return err
	}

	// Byte rate
	byteRate := w.sampleRate * 2
	if err := binary.Write(w.file, binary.LittleEndian, byteRate); err != nil {
		return err
	}

	// Block align
	if err := binary.Write(w.file, binary.LittleEndian, uint16(2)); err != nil {
		return err
	}

	// Bits per sample
	if err := binary.Write(w.file, binary.LittleEndian, uint16(16)); err != nil {
		return err
	}

	// data chunk header
	if _, err := w.file.WriteString("data"); err != nil {
		return err
	}

	// Data size (will be updated in Close)
	if err := binary.Write(w.file, binary.LittleEndian, uint32(0)); err != nil {
		return err
	}

	return nil
}
