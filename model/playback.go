package model

// PlayMode 组合播放模式
type PlayMode string

const (
	PlayModeSequential PlayMode = "sequential" // 顺序播放
	PlayModeParallel   PlayMode = "parallel"   // 同时播放
	PlayModeMixed      PlayMode = "mixed"      // 错峰混音
)

// PlaybackTrack 组合播放中单条音轨的播放参数。
// 仅在请求生命周期内存在，不落库。
type PlaybackTrack struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Volume    float64  `json:"volume"`
	StartTime *float64 `json:"startTime"` // nil 表示接在前一条音轨之后，由客户端解析
	FadeIn    float64  `json:"fadeIn"`
	FadeOut   float64  `json:"fadeOut"`
	Reverb    float64  `json:"reverb,omitempty"`
	Delay     float64  `json:"delay,omitempty"`
	Order     int      `json:"order"`
	Duration  float64  `json:"duration"`
}

// PlaybackPlan 给客户端混音器的播放描述，服务端不做任何实际混音
type PlaybackPlan struct {
	Mode          PlayMode         `json:"mode"`
	Tracks        []*PlaybackTrack `json:"tracks"`
	TotalDuration float64          `json:"totalDuration"`
	Description   string           `json:"description"`
}
