// Package engine orchestrates HyperCrypt's end-to-end encrypt and decrypt
// flows: planning segments, writing the key descriptor, driving the
// segment codec across the split/join file layout, and reporting progress.
// Every output is written to a temporary file first and renamed into place
// only once the whole operation has succeeded, so a failure at any point
// leaves no partial final-named file behind.
package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vilshansen/hypercrypt/constants"
	"github.com/vilshansen/hypercrypt/cryptoutils"
	"github.com/vilshansen/hypercrypt/hcerr"
	"github.com/vilshansen/hypercrypt/keydescriptor"
	"github.com/vilshansen/hypercrypt/segment"
	"github.com/vilshansen/hypercrypt/segstream"
)

// Status identifies a stage of progress an Engine reports through its
// ProgressFunc callback.
type Status int

const (
	StatusKeyCreationStart Status = iota
	StatusKeyCreationProgress
	StatusKeyCreationEnd
	StatusEncryptStart
	StatusEncryptSectionStart
	StatusEncryptSectionProgress
	StatusEncryptSectionEnd
	StatusEncryptEnd
	StatusDecryptStart
	StatusDecryptSectionStart
	StatusDecryptSectionProgress
	StatusDecryptSectionEnd
	StatusDecryptEnd
	StatusAnalyseFileStart
	StatusAnalyseFileEnd
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusKeyCreationStart:
		return "key creation start"
	case StatusKeyCreationProgress:
		return "key creation progress"
	case StatusKeyCreationEnd:
		return "key creation end"
	case StatusEncryptStart:
		return "encrypt start"
	case StatusEncryptSectionStart:
		return "encrypt section start"
	case StatusEncryptSectionProgress:
		return "encrypt section progress"
	case StatusEncryptSectionEnd:
		return "encrypt section end"
	case StatusEncryptEnd:
		return "encrypt end"
	case StatusDecryptStart:
		return "decrypt start"
	case StatusDecryptSectionStart:
		return "decrypt section start"
	case StatusDecryptSectionProgress:
		return "decrypt section progress"
	case StatusDecryptSectionEnd:
		return "decrypt section end"
	case StatusDecryptEnd:
		return "decrypt end"
	case StatusAnalyseFileStart:
		return "analyse file start"
	case StatusAnalyseFileEnd:
		return "analyse file end"
	case StatusDone:
		return "done"
	default:
		return "unknown status"
	}
}

// ProgressFunc receives status and percent-complete (0-100) updates for
// the current stage. It is called synchronously from the encrypt/decrypt
// goroutine and must not block indefinitely.
type ProgressFunc func(status Status, percent int)

// Options configures an Engine. The zero value is usable: Logger defaults
// to a fresh logrus.Logger, Progress defaults to a no-op, and Splits/Joins
// default to 1 (no splitting/joining).
type Options struct {
	Logger   *logrus.Logger
	Progress ProgressFunc
	Splits   int
	Joins    int
}

// Engine runs encrypt and decrypt operations under a fixed set of Options.
type Engine struct {
	log      *logrus.Logger
	progress ProgressFunc
	splits   int
	joins    int
}

// New builds an Engine, applying Options defaults.
func New(opts Options) *Engine {
	e := &Engine{
		log:      opts.Logger,
		progress: opts.Progress,
		splits:   opts.Splits,
		joins:    opts.Joins,
	}
	if e.log == nil {
		e.log = logrus.New()
	}
	if e.progress == nil {
		e.progress = func(Status, int) {}
	}
	if e.splits < 1 {
		e.splits = 1
	}
	if e.joins < 1 {
		e.joins = 1
	}
	return e
}

func ciphertextNamer(base string) segstream.NamerFunc {
	return func(i, n int) string {
		if n <= 1 {
			return base + constants.CiphertextExt
		}
		return fmt.Sprintf("%s.%02d%s", base, i+1, constants.CiphertextExt)
	}
}

func tempPath(dir string) (string, error) {
	suffix, err := cryptoutils.RandomBytes(8)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, hex.EncodeToString(suffix)+constants.TempSuffix), nil
}

// EncryptFile encrypts inputPath, writing a sidecar key descriptor at
// inputPath+constants.KeyFileExt and ciphertext across e.splits output
// files named by ciphertextNamer(inputPath).
func (e *Engine) EncryptFile(inputPath string) (err error) {
	e.log.WithField("input", inputPath).Info("starting encrypt")

	info, statErr := os.Stat(inputPath)
	if statErr != nil {
		return hcerr.Wrap(hcerr.InvalidInputFile, statErr)
	}
	if info.IsDir() {
		return hcerr.New(hcerr.InvalidInputFile, "input is a directory")
	}
	size := uint64(info.Size())
	if size == 0 {
		return hcerr.New(hcerr.FileTooSmall, "input file is empty")
	}

	keyPath := inputPath + constants.KeyFileExt
	if _, statErr := os.Stat(keyPath); statErr == nil {
		return hcerr.New(hcerr.KeyFileAlreadyExists, keyPath)
	}

	namer := ciphertextNamer(inputPath)
	for i := 0; i < e.splits; i++ {
		if _, statErr := os.Stat(namer(i, e.splits)); statErr == nil {
			return hcerr.New(hcerr.OutputFileAlreadyExists, namer(i, e.splits))
		}
	}

	dir := filepath.Dir(inputPath)

	e.progress(StatusKeyCreationStart, 0)
	plan, planErr := segment.BuildPlan(size)
	if planErr != nil {
		return hcerr.Wrap(hcerr.Internal, planErr)
	}
	e.progress(StatusKeyCreationEnd, 100)

	descriptor, serErr := keydescriptor.Serialize(plan)
	if serErr != nil {
		return hcerr.Wrap(hcerr.Internal, serErr)
	}

	keyTemp, tmpErr := tempPath(dir)
	if tmpErr != nil {
		return hcerr.Wrap(hcerr.Internal, tmpErr)
	}
	if writeErr := os.WriteFile(keyTemp, descriptor, 0o600); writeErr != nil {
		return hcerr.Wrap(hcerr.CannotCreateKeyFile, writeErr)
	}
	defer func() {
		if err != nil {
			os.Remove(keyTemp)
		}
	}()

	var totalOut uint64
	for _, k := range plan {
		totalOut += uint64(k.OutSize)
	}

	tempPaths := make([]string, e.splits)
	for i := range tempPaths {
		p, tmpErr := tempPath(dir)
		if tmpErr != nil {
			return hcerr.Wrap(hcerr.Internal, tmpErr)
		}
		tempPaths[i] = p
	}
	tempNamer := func(i, n int) string { return tempPaths[i] }

	writer, wErr := segstream.CreateWriter(totalOut, e.splits, tempNamer)
	if wErr != nil {
		return hcerr.Wrap(hcerr.CannotCreateOutputFile, wErr)
	}
	defer func() {
		writer.Close()
		if err != nil {
			for _, p := range tempPaths {
				os.Remove(p)
			}
		}
	}()

	in, openErr := os.Open(inputPath)
	if openErr != nil {
		return hcerr.Wrap(hcerr.CannotOpenInputFile, openErr)
	}
	defer in.Close()

	e.progress(StatusEncryptStart, 0)
	var doneIn uint64
	for _, k := range plan {
		e.progress(StatusEncryptSectionStart, 0)

		plaintext := make([]byte, k.InSize)
		if _, readErr := io.ReadFull(in, plaintext); readErr != nil {
			return hcerr.Wrap(hcerr.CannotReadInputFile, readErr)
		}

		ciphertext, encErr := segment.Encrypt(plaintext, k)
		cryptoutils.ZeroBytes(plaintext)
		if encErr != nil {
			return hcerr.Wrap(hcerr.Internal, encErr)
		}

		if _, writeErr := writer.Write(ciphertext); writeErr != nil {
			return hcerr.Wrap(hcerr.CannotWriteOutputFile, writeErr)
		}

		doneIn += uint64(k.InSize)
		e.progress(StatusEncryptSectionEnd, 100)
		e.progress(StatusEncryptSectionProgress, percentOf(doneIn, size))
	}
	e.progress(StatusEncryptEnd, 100)

	if closeErr := writer.Close(); closeErr != nil {
		return hcerr.Wrap(hcerr.CannotWriteOutputFile, closeErr)
	}
	if closeErr := in.Close(); closeErr != nil {
		return hcerr.Wrap(hcerr.CannotReadInputFile, closeErr)
	}

	var renamed []string
	defer func() {
		if err != nil {
			for _, p := range renamed {
				os.Remove(p)
			}
		}
	}()
	if renameErr := os.Rename(keyTemp, keyPath); renameErr != nil {
		return hcerr.Wrap(hcerr.CannotRenameKeyFile, renameErr)
	}
	renamed = append(renamed, keyPath)
	for i, p := range tempPaths {
		final := namer(i, e.splits)
		if renameErr := os.Rename(p, final); renameErr != nil {
			return hcerr.Wrap(hcerr.CannotRenameOutputFile, renameErr)
		}
		renamed = append(renamed, final)
	}

	e.progress(StatusDone, 100)
	e.log.WithField("input", inputPath).Info("encrypt complete")
	return nil
}

func percentOf(done, total uint64) int {
	if total == 0 {
		return 100
	}
	return int((done * 100) / total)
}

// DecryptFile decrypts the file described by keyPath (normally
// <original>.hckey), reading ciphertext from e.joins input files and
// writing the recovered plaintext to the descriptor's implied original
// path (keyPath with constants.KeyFileExt trimmed).
func (e *Engine) DecryptFile(keyPath string) (err error) {
	e.log.WithField("key", keyPath).Info("starting decrypt")

	descriptor, readErr := os.ReadFile(keyPath)
	if readErr != nil {
		return hcerr.Wrap(hcerr.InvalidKeyFile, readErr)
	}

	e.progress(StatusAnalyseFileStart, 0)
	plan, parseErr := keydescriptor.Parse(descriptor)
	if parseErr != nil {
		return hcerr.Wrap(hcerr.BadKey, parseErr)
	}
	e.progress(StatusAnalyseFileEnd, 100)

	base := trimKeyExt(keyPath)
	if _, statErr := os.Stat(base); statErr == nil {
		return hcerr.New(hcerr.OutputFileAlreadyExists, base)
	}

	namer := ciphertextNamer(base)
	reader, openErr := segstream.OpenReader(e.joins, namer)
	if openErr != nil {
		return hcerr.Wrap(hcerr.CannotOpenInputFile, openErr)
	}
	defer reader.Close()

	var wantTotal uint64
	for _, k := range plan {
		wantTotal += uint64(k.OutSize)
	}
	if reader.TotalSize() != wantTotal {
		return hcerr.New(hcerr.BadKey, "joined ciphertext size does not match key descriptor")
	}

	dir := filepath.Dir(base)
	outTemp, tmpErr := tempPath(dir)
	if tmpErr != nil {
		return hcerr.Wrap(hcerr.Internal, tmpErr)
	}

	out, createErr := os.OpenFile(outTemp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if createErr != nil {
		return hcerr.Wrap(hcerr.CannotCreateOutputFile, createErr)
	}
	defer func() {
		out.Close()
		if err != nil {
			os.Remove(outTemp)
		}
	}()

	e.progress(StatusDecryptStart, 0)
	var doneOut uint64
	for _, k := range plan {
		e.progress(StatusDecryptSectionStart, 0)

		ciphertext := make([]byte, k.OutSize)
		if _, readErr := io.ReadFull(reader, ciphertext); readErr != nil {
			return hcerr.Wrap(hcerr.CannotReadInputFile, readErr)
		}

		plaintext, decErr := segment.Decrypt(ciphertext, k)
		if decErr != nil {
			return hcerr.Wrap(hcerr.BadKey, decErr)
		}

		if _, writeErr := out.Write(plaintext); writeErr != nil {
			return hcerr.Wrap(hcerr.CannotWriteOutputFile, writeErr)
		}

		doneOut += uint64(k.OutSize)
		e.progress(StatusDecryptSectionEnd, 100)
		e.progress(StatusDecryptSectionProgress, percentOf(doneOut, wantTotal))
	}
	e.progress(StatusDecryptEnd, 100)

	if closeErr := out.Close(); closeErr != nil {
		return hcerr.Wrap(hcerr.CannotWriteOutputFile, closeErr)
	}
	if closeErr := reader.Close(); closeErr != nil {
		return hcerr.Wrap(hcerr.CannotReadInputFile, closeErr)
	}

	if renameErr := os.Rename(outTemp, base); renameErr != nil {
		return hcerr.Wrap(hcerr.CannotRenameOutputFile, renameErr)
	}

	e.progress(StatusDone, 100)
	e.log.WithField("key", keyPath).Info("decrypt complete")
	return nil
}

func trimKeyExt(p string) string {
	ext := constants.KeyFileExt
	if len(p) > len(ext) && p[len(p)-len(ext):] == ext {
		return p[:len(p)-len(ext)]
	}
	return p
}
