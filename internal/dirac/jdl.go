// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirac

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

const (
	DefaultContainer     = "sameriksen/dask:debian"
	DefaultSchedulerPort = 8786
	DefaultOwnerGroup    = "dteam_user"
)

// JobSpec parameterizes the JDL of one remote worker.
type JobSpec struct {
	Name             string
	Container        string
	SchedulerAddress string
	SchedulerPort    int
	OwnerGroup       string
	// Site pins the job to one grid site. Empty lets the server choose.
	Site string
	// ExtraArgs are appended to the worker command line.
	ExtraArgs string
}

var jdlTemplate = template.Must(template.New("jdl").Funcs(template.FuncMap{
	"quote": quote,
}).Parse(`JobName = {{ quote .Name }};
Executable = "singularity";
Arguments = {{ quote .Arguments }};
StdOutput = "std.out";
StdError = "std.err";
OutputSandbox = {"std.out","std.err"};
OwnerGroup = {{ .OwnerGroup }};
{{- if .Site }}
Site = {{ quote .Site }};
{{- end }}
`))

type jdlData struct {
	JobSpec
	Arguments string
}

// RenderJDL renders the job description that starts a worker container and
// connects it to the scheduler.
func RenderJDL(spec JobSpec) (string, error) {
	if spec.SchedulerAddress == "" {
		return "", fmt.Errorf("scheduler address is required")
	}
	if spec.Name == "" {
		spec.Name = "dask_worker"
	}
	if spec.Container == "" {
		spec.Container = DefaultContainer
	}
	if spec.SchedulerPort == 0 {
		spec.SchedulerPort = DefaultSchedulerPort
	}
	if spec.OwnerGroup == "" {
		spec.OwnerGroup = DefaultOwnerGroup
	}

	args := []string{
		"exec", "--cleanenv", "docker://" + spec.Container,
		"dask-worker", "tcp://" + spec.SchedulerAddress + ":" + strconv.Itoa(spec.SchedulerPort),
	}
	if extra := strings.TrimSpace(spec.ExtraArgs); extra != "" {
		args = append(args, extra)
	}

	var buf bytes.Buffer
	if err := jdlTemplate.Execute(&buf, jdlData{JobSpec: spec, Arguments: strings.Join(args, " ")}); err != nil {
		return "", fmt.Errorf("failed to render JDL: %w", err)
	}
	return buf.String(), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
