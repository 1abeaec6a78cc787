package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(UnsupportedSceneFormat, "scene format 2 is not supported")
	want := "[UNSUPPORTED_SCENE_FORMAT] scene format 2 is not supported"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("open main.tscn: no such file")
	err := Wrap(StorageFailure, "could not read scene", cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	if got := err.Error(); got != "[STORAGE_FAILURE] could not read scene: open main.tscn: no such file" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(SceneNotReady, "waiting on dep")); got != SceneNotReady {
		t.Errorf("CodeOf = %q, want %q", got, SceneNotReady)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %q, want %q", got, InternalError)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(SceneBatchStalled, "no progress").WithDetails([]string{"a.tscn", "b.tscn"})
	files, ok := err.Details.([]string)
	if !ok || len(files) != 2 {
		t.Errorf("details not carried: %#v", err.Details)
	}
}
