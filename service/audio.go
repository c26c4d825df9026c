package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/conv"
)

// topTrackLimit 参与聚合的热门曲目数。
const topTrackLimit = 5

// audioMeasureKeys 是富化层期望的测量值名。
var audioMeasureKeys = []string{
	"energy", "danceability", "valence", "acousticness", "instrumentalness",
}

// ArtistAudioFeatures 实现 core.AudioFeatureClient 接口：
// 取艺人热门曲目的逐曲目音频特征并按测量值求平均。
// 音频特征端点被拒（403）时退回 AcousticBrainz 按曲目名查询。
func (c *CatalogHTTP) ArtistAudioFeatures(ctx context.Context, artistID string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("market", c.Market)

	var topTracks struct {
		Tracks []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"tracks"`
	}
	if err := c.request(ctx, "/artists/"+artistID+"/top-tracks", params, &topTracks); err != nil {
		if isForbidden(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}

	trackIDs := make([]string, 0, topTrackLimit)
	for _, t := range topTracks.Tracks {
		if t.ID != "" {
			trackIDs = append(trackIDs, t.ID)
		}
		if len(trackIDs) == topTrackLimit {
			break
		}
	}
	if len(trackIDs) == 0 {
		return map[string]float64{}, nil
	}

	featParams := url.Values{}
	featParams.Set("ids", strings.Join(trackIDs, ","))

	var featResp struct {
		AudioFeatures []json.RawMessage `json:"audio_features"`
	}
	err := c.request(ctx, "/audio-features", featParams, &featResp)
	if err != nil && !isForbidden(err) {
		return nil, err
	}

	averaged := averageMeasures(featResp.AudioFeatures)
	if len(averaged) > 0 {
		return averaged, nil
	}

	// 音频特征端点无数据时按曲目名走 AcousticBrainz
	if c.Brainz == nil {
		return map[string]float64{}, nil
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range topTracks.Tracks {
		artistName := ""
		if len(t.Artists) > 0 {
			artistName = t.Artists[0].Name
		}
		features, err := c.Brainz.LookupFeatures(ctx, t.Name, artistName)
		if err != nil || features == nil {
			continue
		}
		for _, key := range audioMeasureKeys {
			if v, ok := features[key]; ok {
				sums[key] += core.Clamp01(v)
				counts[key]++
			}
		}
	}
	result := make(map[string]float64, len(sums))
	for key, total := range sums {
		result[key] = total / float64(counts[key])
	}
	return result, nil
}

// averageMeasures 对逐曲目特征按测量值求平均，无数据的测量值不出现在结果中。
func averageMeasures(features []json.RawMessage) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, raw := range features {
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		measures := conv.MapToFloat64(payload)
		for _, key := range audioMeasureKeys {
			if f, ok := measures[key]; ok {
				sums[key] += f
				counts[key]++
			}
		}
	}

	averaged := make(map[string]float64, len(sums))
	for key, total := range sums {
		averaged[key] = total / float64(counts[key])
	}
	return averaged
}

func isForbidden(err error) bool {
	domainErr := core.GetDomainError(err)
	return domainErr != nil && strings.Contains(domainErr.Message, "status=403")
}

var _ core.AudioFeatureClient = (*CatalogHTTP)(nil)
