package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/config"
)

const testPosting = "Senior Backend Engineer\n\nRequirements:\nPython, Flask, Docker\n\nNice to have:\nKubernetes\n"

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setConfigPath(t *testing.T, path string) {
	t.Helper()
	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })
}

func TestReadCV(t *testing.T) {
	dir := t.TempDir()
	cvPath := writeTestFile(t, dir, "cv.md", "# Jane\n\nPython   developer\n")

	text, err := readCV("", "inline text")
	require.NoError(t, err)
	assert.Equal(t, "inline text", text)

	text, err = readCV(cvPath, "")
	require.NoError(t, err)
	assert.Contains(t, text, "Python developer")

	_, err = readCV("", "  ")
	assert.ErrorContains(t, err, "either --cv or --cv-text")

	_, err = readCV(filepath.Join(dir, "missing.txt"), "")
	assert.ErrorContains(t, err, "failed to read CV")
}

func TestReadJob(t *testing.T) {
	dir := t.TempDir()
	jobPath := writeTestFile(t, dir, "job.txt", testPosting)
	ctx := context.Background()

	text, err := readJob(ctx, jobPath, "", nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Requirements:")

	_, err = readJob(ctx, jobPath, "https://example.com/job", nil)
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = readJob(ctx, "", "", nil)
	assert.ErrorContains(t, err, "either --job or --job-url")
}

func TestReadPostings(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "acme-backend.txt", testPosting)
	b := writeTestFile(t, dir, "globex.md", "Requirements: Go")

	postings, err := readPostings([]string{a, b})
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "acme-backend", postings[0].ID)
	assert.Equal(t, a, postings[0].Source)
	assert.Equal(t, "globex", postings[1].ID)

	_, err = readPostings([]string{filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)
}

func TestMergeConfig_FileProvidesDefaults(t *testing.T) {
	dir := t.TempDir()
	jobPath := writeTestFile(t, dir, "job.txt", testPosting)
	cfgPath := writeTestFile(t, dir, "config.json", `{
		"job": "`+filepath.ToSlash(jobPath)+`",
		"skills": ["python"],
		"use_browser": true
	}`)
	setConfigPath(t, cfgPath)

	merged, err := mergeConfig(config.Config{Skills: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(jobPath), filepath.ToSlash(merged.Job))
	assert.Equal(t, []string{"go"}, merged.Skills, "flags win over file values")
	assert.True(t, merged.UseBrowser)
}

func TestMergeConfig_Invalid(t *testing.T) {
	setConfigPath(t, "")
	_, err := mergeConfig(config.Config{Job: "a.txt", JobURL: "https://example.com"})
	assert.ErrorContains(t, err, "mutually exclusive")

	setConfigPath(t, filepath.Join(t.TempDir(), "missing.json"))
	_, err = mergeConfig(config.Config{})
	assert.Error(t, err)
}

func TestNewAnalyzer(t *testing.T) {
	analyzer, catalog, err := newAnalyzer(config.Config{})
	require.NoError(t, err)
	assert.NotNil(t, analyzer)
	assert.Greater(t, catalog.Len(), 0)

	_, _, err = newAnalyzer(config.Config{Weights: &config.Weights{Required: 2, Nice: 1, SkillBlend: 0.5, TextBlend: 0.2}})
	assert.ErrorContains(t, err, "failed to create analyzer")

	_, _, err = newAnalyzer(config.Config{Catalog: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "failed to load skill catalog")
}
