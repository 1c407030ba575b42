// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderJDL(t *testing.T) {
	jdl, err := RenderJDL(JobSpec{
		Container:        "python:3.11",
		SchedulerAddress: "127.0.0.1",
		OwnerGroup:       "test_group",
		Site:             "test_site",
	})
	require.NoError(t, err)

	assert.Contains(t, jdl, "python:3.11")
	assert.Contains(t, jdl, "tcp://127.0.0.1:8786")
	assert.Contains(t, jdl, "OwnerGroup = test_group;")
	assert.Contains(t, jdl, `Site = "test_site";`)
	assert.Contains(t, jdl, `JobName = "dask_worker";`)
}

func TestRenderJDL_NoSite(t *testing.T) {
	jdl, err := RenderJDL(JobSpec{SchedulerAddress: "10.0.0.1", OwnerGroup: "g"})
	require.NoError(t, err)
	assert.NotContains(t, jdl, "Site =")
	assert.Contains(t, jdl, "docker://"+DefaultContainer)
}

func TestRenderJDL_ExtraArgs(t *testing.T) {
	jdl, err := RenderJDL(JobSpec{SchedulerAddress: "10.0.0.1", SchedulerPort: 9000, ExtraArgs: "--nooop"})
	require.NoError(t, err)
	assert.Contains(t, jdl, `Arguments = "exec --cleanenv docker://sameriksen/dask:debian dask-worker tcp://10.0.0.1:9000 --nooop";`)
	assert.Contains(t, jdl, "OwnerGroup = "+DefaultOwnerGroup+";")
}

func TestRenderJDL_RequiresScheduler(t *testing.T) {
	_, err := RenderJDL(JobSpec{})
	assert.Error(t, err)
}
