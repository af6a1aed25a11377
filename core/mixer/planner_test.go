package mixer_test

import (
	"errors"
	"fmt"
	"testing"

	"slumberpod/core/apperr"
	"slumberpod/core/mixer"
	"slumberpod/model"
)

func makeAudios(durations ...float64) []*model.Audio {
	audios := make([]*model.Audio, 0, len(durations))
	for i, d := range durations {
		audios = append(audios, &model.Audio{
			ID:              int64(i + 1),
			Title:           fmt.Sprintf("audio-%d", i+1),
			AudioURL:        fmt.Sprintf("https://cdn.example.com/audio-%d.mp3", i+1),
			DurationSeconds: d,
		})
	}
	return audios
}

func TestPlanSequential(t *testing.T) {
	plan, err := mixer.Plan(makeAudios(120, 180, 60), model.PlayModeSequential, nil)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if len(plan.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(plan.Tracks))
	}
	first := plan.Tracks[0]
	if first.StartTime == nil || *first.StartTime != 0 {
		t.Errorf("first track must start at 0, got %v", first.StartTime)
	}
	for i, tr := range plan.Tracks[1:] {
		if tr.StartTime != nil {
			t.Errorf("track %d: sequential followers must have nil start time, got %v", i+1, *tr.StartTime)
		}
	}
	for i, tr := range plan.Tracks {
		if tr.Volume != 1.0 {
			t.Errorf("track %d: expected default volume 1.0, got %v", i, tr.Volume)
		}
		if tr.Order != i {
			t.Errorf("track %d: expected order %d, got %d", i, i, tr.Order)
		}
	}
	if plan.TotalDuration != 360 {
		t.Errorf("expected total duration 360 (sum), got %v", plan.TotalDuration)
	}
}

func TestPlanParallel(t *testing.T) {
	plan, err := mixer.Plan(makeAudios(120, 300, 60), model.PlayModeParallel, nil)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	for i, tr := range plan.Tracks {
		if tr.StartTime == nil || *tr.StartTime != 0 {
			t.Errorf("track %d: parallel tracks must start at 0, got %v", i, tr.StartTime)
		}
		if tr.Volume != 0.6 {
			t.Errorf("track %d: expected default parallel volume 0.6, got %v", i, tr.Volume)
		}
	}
	if plan.TotalDuration != 300 {
		t.Errorf("expected total duration 300 (max), got %v", plan.TotalDuration)
	}
}

func TestPlanMixed(t *testing.T) {
	plan, err := mixer.Plan(makeAudios(100, 200, 150, 80), model.PlayModeMixed, nil)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	wantStarts := []float64{0, 3, 6, 9}
	wantVolumes := []float64{1.0, 0.7, 0.5, 0.5}
	for i, tr := range plan.Tracks {
		if tr.StartTime == nil || *tr.StartTime != wantStarts[i] {
			t.Errorf("track %d: expected start %v, got %v", i, wantStarts[i], tr.StartTime)
		}
		if tr.Volume != wantVolumes[i] {
			t.Errorf("track %d: expected volume %v, got %v", i, wantVolumes[i], tr.Volume)
		}
		if tr.FadeIn != 2.0 || tr.FadeOut != 3.0 {
			t.Errorf("track %d: expected fade in/out 2/3, got %v/%v", i, tr.FadeIn, tr.FadeOut)
		}
		if tr.Reverb != 0.1 {
			t.Errorf("track %d: expected reverb 0.1, got %v", i, tr.Reverb)
		}
	}
	// 第三轨起延迟才生效
	if plan.Tracks[0].Delay != 0 || plan.Tracks[1].Delay != 0 {
		t.Errorf("first two tracks must have no delay")
	}
	if plan.Tracks[2].Delay != 0.5 || plan.Tracks[3].Delay != 0.5 {
		t.Errorf("tracks from index 2 must have delay 0.5")
	}
	// maxStart(9) + maxDur(200)
	if plan.TotalDuration != 209 {
		t.Errorf("expected total duration 209, got %v", plan.TotalDuration)
	}
}

func TestPlanMixedVolumeOverride(t *testing.T) {
	volumes := map[int64]float64{1: 0.8, 2: 1.0, 3: 2.0}
	plan, err := mixer.Plan(makeAudios(100, 100, 100), model.PlayModeMixed, volumes)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	// 覆盖音量作为基准再乘以位置系数
	if got := plan.Tracks[0].Volume; got != 0.8 {
		t.Errorf("track 0: expected 0.8, got %v", got)
	}
	if got := plan.Tracks[1].Volume; got != 0.7 {
		t.Errorf("track 1: expected 1.0*0.7=0.7, got %v", got)
	}
	if got := plan.Tracks[2].Volume; got != 1.0 {
		t.Errorf("track 2: expected 2.0*0.5=1.0, got %v", got)
	}
}

func TestPlanDefaultDuration(t *testing.T) {
	plan, err := mixer.Plan(makeAudios(0), model.PlayModeSequential, nil)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.Tracks[0].Duration != 300 {
		t.Errorf("unknown duration must fall back to 300s, got %v", plan.Tracks[0].Duration)
	}
}

func TestPlanEmptyTrackList(t *testing.T) {
	_, err := mixer.Plan(nil, model.PlayModeParallel, nil)
	if !errors.Is(err, mixer.ErrEmptyTrackList) {
		t.Fatalf("expected ErrEmptyTrackList, got %v", err)
	}
	if apperr.HTTPStatus(err) != 400 {
		t.Errorf("planner errors must map to 400, got %d", apperr.HTTPStatus(err))
	}
}

func TestPlanTooManyTracks(t *testing.T) {
	durations := make([]float64, 11)
	for i := range durations {
		durations[i] = 60
	}
	_, err := mixer.Plan(makeAudios(durations...), model.PlayModeParallel, nil)
	if !errors.Is(err, mixer.ErrTooManyTracks) {
		t.Fatalf("expected ErrTooManyTracks for 11 tracks, got %v", err)
	}
}

func TestPlanInvalidVolume(t *testing.T) {
	_, err := mixer.Plan(makeAudios(60), model.PlayModeSequential, map[int64]float64{1: 2.5})
	if !errors.Is(err, mixer.ErrInvalidVolume) {
		t.Fatalf("expected ErrInvalidVolume for volume 2.5, got %v", err)
	}

	_, err = mixer.Plan(makeAudios(60), model.PlayModeSequential, map[int64]float64{1: -0.1})
	if !errors.Is(err, mixer.ErrInvalidVolume) {
		t.Fatalf("expected ErrInvalidVolume for negative volume, got %v", err)
	}
}

func TestPlanUnknownMode(t *testing.T) {
	_, err := mixer.Plan(makeAudios(60), model.PlayMode("shuffle"), nil)
	if err == nil {
		t.Fatal("expected error for unknown play mode")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("unknown mode must be a validation error, got kind %v", apperr.KindOf(err))
	}
}
