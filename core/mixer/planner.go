package mixer

import (
	"fmt"

	"slumberpod/core/apperr"
	"slumberpod/model"
)

// 组合播放参数。服务端只产出播放描述，真正的混音在客户端完成。
const (
	maxTracks       = 10
	defaultDuration = 300 // 时长未知时的占位秒数

	mixedFadeIn  = 2.0
	mixedFadeOut = 3.0
	mixedReverb  = 0.1
	mixedDelay   = 0.5
	mixedStep    = 3.0 // 错峰间隔秒数
)

var (
	ErrEmptyTrackList   = apperr.Validation("track list is empty")
	ErrTooManyTracks    = apperr.Validation(fmt.Sprintf("at most %d tracks per combination", maxTracks))
	ErrInvalidVolume    = apperr.Validation("resolved volume out of range [0,2]")
	ErrInvalidStartTime = apperr.Validation("computed start time is negative")
)

// Plan 根据音轨列表和播放模式计算组合播放配置。
// 纯函数: 每次请求重新求值，无状态。
// volumes 以音频ID为键覆盖默认音量，缺省为1.0。
func Plan(audios []*model.Audio, mode model.PlayMode, volumes map[int64]float64) (*model.PlaybackPlan, error) {
	if len(audios) == 0 {
		return nil, ErrEmptyTrackList
	}
	if len(audios) > maxTracks {
		return nil, ErrTooManyTracks
	}

	var tracks []*model.PlaybackTrack
	var err error
	switch mode {
	case model.PlayModeSequential:
		tracks, err = planSequential(audios, volumes)
	case model.PlayModeParallel:
		tracks, err = planParallel(audios, volumes)
	case model.PlayModeMixed:
		tracks, err = planMixed(audios, volumes)
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown play mode %q", mode))
	}
	if err != nil {
		return nil, err
	}

	plan := &model.PlaybackPlan{
		Mode:          mode,
		Tracks:        tracks,
		TotalDuration: totalDuration(mode, tracks),
		Description:   fmt.Sprintf("%s playback of %d tracks", mode, len(tracks)),
	}
	return plan, nil
}

// planSequential 顺序播放: 首条从0开始，后续音轨的起点留给客户端解析
// (StartTime为nil表示接在前一条结束之后)。
func planSequential(audios []*model.Audio, volumes map[int64]float64) ([]*model.PlaybackTrack, error) {
	tracks := make([]*model.PlaybackTrack, 0, len(audios))
	for i, a := range audios {
		t := newTrack(a, i)
		t.Volume = overrideVolume(volumes, a.ID, 1.0)
		if i == 0 {
			t.StartTime = ptr(0)
		}
		if err := validateTrack(t); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// planParallel 同时播放: 全部从0开始。默认音量压到0.6，
// 避免多轨叠加时削波。
func planParallel(audios []*model.Audio, volumes map[int64]float64) ([]*model.PlaybackTrack, error) {
	tracks := make([]*model.PlaybackTrack, 0, len(audios))
	for i, a := range audios {
		t := newTrack(a, i)
		t.StartTime = ptr(0)
		t.Volume = overrideVolume(volumes, a.ID, 0.6)
		if err := validateTrack(t); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// planMixed 错峰混音: 首轨全音量从0开始，第二轨3秒后进场降到0.7倍，
// 之后每轨按 index*3 秒错开，音量降到0.5倍，统一淡入淡出。
func planMixed(audios []*model.Audio, volumes map[int64]float64) ([]*model.PlaybackTrack, error) {
	tracks := make([]*model.PlaybackTrack, 0, len(audios))
	for i, a := range audios {
		base := overrideVolume(volumes, a.ID, 1.0)
		t := newTrack(a, i)
		t.FadeIn = mixedFadeIn
		t.FadeOut = mixedFadeOut
		t.Reverb = mixedReverb

		switch {
		case i == 0:
			t.StartTime = ptr(0)
			t.Volume = base
		case i == 1:
			t.StartTime = ptr(mixedStep)
			t.Volume = base * 0.7
		default:
			t.StartTime = ptr(float64(i) * mixedStep)
			t.Volume = base * 0.5
			t.Delay = mixedDelay
		}

		if err := validateTrack(t); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func newTrack(a *model.Audio, order int) *model.PlaybackTrack {
	return &model.PlaybackTrack{
		ID:       a.ID,
		Title:    a.Title,
		URL:      a.AudioURL,
		Order:    order,
		Duration: trackDuration(a),
	}
}

func trackDuration(a *model.Audio) float64 {
	if a.DurationSeconds > 0 {
		return a.DurationSeconds
	}
	return defaultDuration
}

func overrideVolume(volumes map[int64]float64, id int64, fallback float64) float64 {
	if v, ok := volumes[id]; ok {
		return v
	}
	return fallback
}

// validateTrack 防御性校验: 按上面的公式起始时间不可能为负，
// 但音量覆盖可以来自调用者。
func validateTrack(t *model.PlaybackTrack) error {
	if t.Volume < 0 || t.Volume > 2 {
		return ErrInvalidVolume
	}
	if t.StartTime != nil && *t.StartTime < 0 {
		return ErrInvalidStartTime
	}
	return nil
}

// totalDuration 估算总时长。mixed 模式下是近似值:
// 不同长度的音轨交错重叠时并非严格的混音长度。
func totalDuration(mode model.PlayMode, tracks []*model.PlaybackTrack) float64 {
	switch mode {
	case model.PlayModeSequential:
		var sum float64
		for _, t := range tracks {
			sum += t.Duration
		}
		return sum
	case model.PlayModeParallel:
		var max float64
		for _, t := range tracks {
			if t.Duration > max {
				max = t.Duration
			}
		}
		return max
	default: // mixed: max(startTime) + max(duration)
		var maxStart, maxDur float64
		for _, t := range tracks {
			if t.StartTime != nil && *t.StartTime > maxStart {
				maxStart = *t.StartTime
			}
			if t.Duration > maxDur {
				maxDur = t.Duration
			}
		}
		return maxStart + maxDur
	}
}

func ptr(v float64) *float64 {
	return &v
}
