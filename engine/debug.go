package engine

import (
	"bytes"
	"io"
	"os"
	"runtime/debug"
)

func doSafe(f func()) (err *PanicError) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	f()

	return nil
}

// doDebug runs fn while teeing os.Stdout and os.Stderr into buffers.
// A panic in fn is returned as panicErr; err reports capture failures.
func doDebug(fn func()) (stdout string, stderr string, panicErr *PanicError, err error) {
	// keep backup of the real file
	originStdout := os.Stdout
	originStderr := os.Stderr

	// Create pipe to create reader & writer
	stdoutPipeReader, stdoutPipeWriter, err := os.Pipe()
	if err != nil {
		return "", "", nil, err
	}
	defer stdoutPipeWriter.Close()
	stderrPipeReader, stderrPipeWriter, err := os.Pipe()
	if err != nil {
		stdoutPipeReader.Close()
		return "", "", nil, err
	}
	defer stderrPipeWriter.Close()

	// Restore original file
	defer func() {
		os.Stdout = originStdout
		os.Stderr = originStderr
	}()

	// Connect file to writer side of pipe
	os.Stdout = stdoutPipeWriter
	os.Stderr = stderrPipeWriter

	// Create MultiWriter to write to buffer and file at the same time
	var (
		stdoutBuf bytes.Buffer
		stderrBuf bytes.Buffer
	)
	stdoutMultiWriter := io.MultiWriter(&stdoutBuf, originStdout)
	stderrMultiWriter := io.MultiWriter(&stderrBuf, originStderr)

	// copy the output in a separate goroutine so printing can't block indefinitely
	copyErrCh := make(chan error, 2)
	go func() {
		_, err := io.Copy(stdoutMultiWriter, stdoutPipeReader)
		stdoutPipeReader.Close()
		copyErrCh <- err
	}()
	go func() {
		_, err := io.Copy(stderrMultiWriter, stderrPipeReader)
		stderrPipeReader.Close()
		copyErrCh <- err
	}()

	panicErr = doSafe(fn)

	os.Stdout = originStdout
	os.Stderr = originStderr

	if err := stdoutPipeWriter.Close(); err != nil {
		return "", "", panicErr, err
	}
	if err := stderrPipeWriter.Close(); err != nil {
		return "", "", panicErr, err
	}

	for i := 0; i < 2; i++ {
		if err := <-copyErrCh; err != nil {
			return "", "", panicErr, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), panicErr, nil
}
