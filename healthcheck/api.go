// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/penny-vault/pvfactor/pkginfo"
)

var (
	ErrStatus = errors.New("status code is invalid")
)

// PingURL is the healthchecks.io ping endpoint.
var PingURL = "https://hc-ping.com"

type Signal string

const (
	Start   Signal = "start"
	Success Signal = ""
	Fail    Signal = "fail"
)

// Ping reports the state of a run to the check id. body is attached as the
// check's log message. An empty id disables reporting.
func Ping(ctx context.Context, id string, signal Signal, body string) error {
	if id == "" {
		return nil
	}

	url := fmt.Sprintf("%s/%s", PingURL, id)
	if signal != Success {
		url = fmt.Sprintf("%s/%s", url, signal)
	}

	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetHeader("User-Agent", pkginfo.UserAgent()).
		SetBody(body).
		Post(url)

	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("CheckID", id).Msg("healthcheck ping failed")
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
