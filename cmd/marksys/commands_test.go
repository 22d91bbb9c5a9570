package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marking-system/backend/internal/config"
	"github.com/marking-system/backend/internal/storage"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&app{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestCLI_Workflow(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MARKS_TABLE_PATH", filepath.Join(root, "student_data.csv"))
	t.Setenv("MARKS_ASSIGNMENTS_DIR", filepath.Join(root, "assignments"))
	t.Setenv("LOG_LEVEL", "error")

	refs := filepath.Join(root, "refs")
	require.NoError(t, os.Mkdir(refs, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(refs, "source.txt"), []byte("water boils at one hundred degrees"), 0644))
	essay := filepath.Join(root, "essay.txt")
	require.NoError(t, os.WriteFile(essay, []byte("water boils at one hundred degrees"), 0644))

	out := run(t, "register", "--roll", "12", "--name", "Asha", "--class", "10A")
	assert.Equal(t, "Student Asha registered successfully.\n", out)
	assert.DirExists(t, filepath.Join(root, "assignments"))

	out = run(t, "register", "-r", "12", "-n", "Asha", "-c", "10A")
	assert.Contains(t, out, "already registered")

	out = run(t, "upload", "-r", "99", "-c", "10A", "-f", essay, "-d", refs)
	assert.Contains(t, out, "Student does not exist")

	out = run(t, "upload", "-r", "12", "-c", "10A", "-f", essay, "-d", refs)
	assert.Contains(t, out, "Plagiarism with source.txt: 100.00%")
	assert.Contains(t, out, "auto-assigned: 20")

	out = run(t, "marks", "-r", "12", "-c", "10A", "-m", "65")
	assert.Contains(t, out, "updated successfully")

	out = run(t, "show", "-r", "12", "-c", "10A")
	assert.Contains(t, out, "Marks: 65\n")
	assert.Contains(t, out, "Plagiarism: 100.00\n")
	assert.Contains(t, out, "Assignment File: "+essay+"\n")

	out = run(t, "show", "-r", "12", "-c", "10B")
	assert.Equal(t, "Student not found.\n", out)

	out = run(t, "list")
	assert.Contains(t, out, "Roll Number: 12\n")
}

func TestCLI_HelpDoesNotCreateFiles(t *testing.T) {
	root := t.TempDir()
	table := filepath.Join(root, "student_data.csv")
	assignments := filepath.Join(root, "assignments")
	t.Setenv("MARKS_TABLE_PATH", table)
	t.Setenv("MARKS_ASSIGNMENTS_DIR", assignments)

	out := run(t, "help", "register")
	assert.Contains(t, out, "Register a student in a class")

	out = run(t, "upload", "--help")
	assert.Contains(t, out, "--compare")

	assert.NoFileExists(t, table)
	assert.NoDirExists(t, assignments)
}

func TestPrintRecord(t *testing.T) {
	score := 37.5
	var buf bytes.Buffer

	printRecord(&buf, storage.StudentRecord{
		RollNumber:      "12",
		Name:            "Asha",
		ClassID:         "10A",
		Marks:           "80",
		PlagiarismScore: &score,
	})

	expected := "Student Details:\n" +
		"Roll Number: 12\n" +
		"Name: Asha\n" +
		"Class: 10A\n" +
		"Assignment File: still not assigned\n" +
		"Marks: 80\n" +
		"Plagiarism: 37.50\n"
	assert.Equal(t, expected, buf.String())
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	assert.NoError(t, err)

	_, err = newLogger(config.LogConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)
}
