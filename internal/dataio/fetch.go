package dataio

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/smrutirpanigrahi/dlib/pkg/ranksvm"
)

// FetchDataset downloads a JSON dataset from url.
func FetchDataset(ctx context.Context, url string) (ranksvm.Dataset, error) {
	client := resty.New().
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(30 * time.Second)

	var df DatasetFile
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&df).
		Get(url)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("dataset fetch failed")
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("url", url).Msg("dataset fetch non-2xx")
		return nil, fmt.Errorf("dataset fetch returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return toDataset(df), nil
}
