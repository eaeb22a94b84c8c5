package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFFmpegVersion(t *testing.T) {
	output := "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers\nbuilt with gcc 13\n"
	assert.Equal(t, "6.1.1", ParseFFmpegVersion(output))
}

func TestParseFFmpegVersion_DistroSuffix(t *testing.T) {
	output := "ffmpeg version 4.4.2-0ubuntu0.22.04.1 Copyright (c) 2000-2021 the FFmpeg developers\n"
	assert.Equal(t, "4.4.2-0ubuntu0.22.04.1", ParseFFmpegVersion(output))
}

func TestParseFFmpegVersion_UnexpectedOutput(t *testing.T) {
	assert.Equal(t, "something else", ParseFFmpegVersion("something else\n"))
}

func TestFFmpegProbe_MissingBinary(t *testing.T) {
	probe := NewFFmpegProbe("definitely-not-a-real-binary-name")

	assert.False(t, probe.Available())
	assert.Empty(t, probe.Version())
}
