// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

func TestLoadAWSConfig_Region(t *testing.T) {
	isolate(t)

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("eu-west-2"))
	require.NoError(t, err)
	assert.Equal(t, "eu-west-2", cfg.Region)
}

func TestLoadAWSConfig_UnknownProfile(t *testing.T) {
	isolate(t)

	_, err := LoadAWSConfig(context.Background(), WithProfile("does-not-exist"))
	assert.Error(t, err)
}

func TestNewS3_Endpoint(t *testing.T) {
	isolate(t)

	c, err := NewS3(context.Background(), WithRegion("us-east-1"), WithEndpoint("http://127.0.0.1:9000"))
	require.NoError(t, err)

	o := c.S3.Options()
	require.NotNil(t, o.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *o.BaseEndpoint)
	assert.True(t, o.UsePathStyle)
	assert.Equal(t, "us-east-1", c.Config.Region)
}
