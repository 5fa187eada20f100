package naming

import (
	"errors"
	"strings"
	"testing"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	reg := NewRegistry()
	if err := reg.RegisterApplication("TrialFinderV2", "tf2"); err != nil {
		t.Fatalf("register application: %v", err)
	}
	codec, err := NewCodec(reg, "Development", "TrialFinderV2", "us-east-2")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestComposeName(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name    string
		kind    ResourceKind
		purpose Purpose
		disamb  []string
		want    string
	}{
		{
			name:    "ecs cluster main",
			kind:    KindEcsCluster,
			purpose: PurposeMain,
			want:    "d-tf2-ue2-ecs-main",
		},
		{
			name:    "task execution role",
			kind:    KindIamRole,
			purpose: PurposeTaskExecution,
			want:    "d-tf2-ue2-role-task-exec",
		},
		{
			name:    "artifacts bucket",
			kind:    KindS3Bucket,
			purpose: PurposeArtifacts,
			want:    "d-tf2-ue2-s3-artifacts",
		},
		{
			name:    "with disambiguator",
			kind:    KindSqsQueue,
			purpose: PurposeMain,
			disamb:  []string{"dlq"},
			want:    "d-tf2-ue2-sqs-main-dlq",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.ComposeName(tt.kind, tt.purpose, tt.disamb...)
			if err != nil {
				t.Fatalf("ComposeName: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComposeName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeNameDeterministic(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.ComposeName(KindEcsCluster, PurposeMain)
	if err != nil {
		t.Fatalf("ComposeName: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := codec.ComposeName(KindEcsCluster, PurposeMain)
		if err != nil {
			t.Fatalf("ComposeName: %v", err)
		}
		if again != first {
			t.Fatalf("ComposeName not deterministic: %q vs %q", again, first)
		}
	}
}

func TestComposeNameInjectiveAcrossPurposes(t *testing.T) {
	codec := newTestCodec(t)

	seen := map[string]Purpose{}
	for _, p := range wellKnownPurposes() {
		name, err := codec.ComposeName(KindIamRole, p)
		if err != nil {
			t.Fatalf("ComposeName(%s): %v", p, err)
		}
		if prev, ok := seen[name]; ok {
			t.Fatalf("purposes %s and %s collide on %q", prev, p, name)
		}
		seen[name] = p
	}
}

func TestComposeNameLengthSafety(t *testing.T) {
	// Every default environment/region combination must stay within every
	// kind's limit for a typical application code.
	reg := NewRegistry()
	if err := reg.RegisterApplication("TrialFinderV2", "tf2"); err != nil {
		t.Fatalf("register application: %v", err)
	}

	for env := range defaultEnvironmentCodes {
		for region := range defaultRegionCodes {
			codec, err := NewCodec(reg, env, "TrialFinderV2", region)
			if err != nil {
				t.Fatalf("new codec %s/%s: %v", env, region, err)
			}
			for _, kind := range AllKinds() {
				name, err := codec.ComposeName(kind, PurposeMain)
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", env, region, kind, err)
				}
				if len(name) > kind.MaxLength() {
					t.Errorf("%s name %q exceeds limit %d", kind, name, kind.MaxLength())
				}
			}
		}
	}
}

func TestComposeNameTooLong(t *testing.T) {
	codec := newTestCodec(t)

	purpose, err := CustomPurpose(strings.Repeat("x", 40))
	if err != nil {
		t.Fatalf("custom purpose: %v", err)
	}

	// OpenSearch domains allow at most 28 characters.
	_, err = codec.ComposeName(KindOpenSearchDomain, purpose)
	var tooLong *NameTooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected NameTooLongError, got %v", err)
	}
	if tooLong.Limit != 28 {
		t.Errorf("limit = %d, want 28", tooLong.Limit)
	}
}

func TestComposeNameInvalidDisambiguator(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.ComposeName(KindEcsCluster, PurposeMain, "Not_Valid")
	var invalid *InvalidCharacterError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCharacterError, got %v", err)
	}
}

func TestCustomPurpose(t *testing.T) {
	tests := []struct {
		token   string
		wantErr bool
	}{
		{"reporting", false},
		{"blue-green", false},
		{"", true},
		{"-leading", true},
		{"trailing-", true},
		{"Upper", true},
		{"under_score", true},
	}

	for _, tt := range tests {
		_, err := CustomPurpose(tt.token)
		if (err != nil) != tt.wantErr {
			t.Errorf("CustomPurpose(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
		}
	}
}

func TestNewCodecUnknownInputs(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterApplication("TrialFinderV2", "tf2"); err != nil {
		t.Fatalf("register application: %v", err)
	}

	_, err := NewCodec(reg, "Nonexistent", "TrialFinderV2", "us-east-2")
	var unknownEnv *UnknownEnvironmentError
	if !errors.As(err, &unknownEnv) {
		t.Errorf("expected UnknownEnvironmentError, got %v", err)
	}

	_, err = NewCodec(reg, "Development", "TrialFinderV2", "mars-north-1")
	var unknownRegion *UnknownRegionError
	if !errors.As(err, &unknownRegion) {
		t.Errorf("expected UnknownRegionError, got %v", err)
	}

	_, err = NewCodec(reg, "Development", "Unregistered", "us-east-2")
	var unknownApp *UnknownApplicationError
	if !errors.As(err, &unknownApp) {
		t.Errorf("expected UnknownApplicationError, got %v", err)
	}
}
