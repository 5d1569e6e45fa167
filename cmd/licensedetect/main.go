// Copyright 2023 The licensedetect Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The licensedetect command scans files for open-source license texts,
// notices, references and SPDX-License-Identifier tags.
//
// Usage:
//
//	licensedetect --rules data/rules --licenses data/licenses FILE...
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	licensedetect "github.com/openscan/licensedetect"
)

type fileResult struct {
	Path       string                    `json:"path"`
	Detections []licensedetect.Detection `json:"detections"`
}

func main() {
	app := &cli.App{
		Name:  "licensedetect",
		Usage: "detect open-source licenses in files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rules",
				Usage:    "directory holding the .RULE corpus",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "licenses",
				Usage:    "directory holding the .LICENSE corpus",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "emit detections as JSON",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress corpus warnings",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "licensedetect: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("no files to scan", 1)
	}

	log := logrus.New()
	if c.Bool("quiet") {
		log.SetLevel(logrus.ErrorLevel)
	}

	engine, err := licensedetect.NewEngine(licensedetect.Options{
		RulesDir:    c.String("rules"),
		LicensesDir: c.String("licenses"),
		Logger:      log,
	})
	if err != nil {
		return err
	}

	var results []fileResult
	failed := false
	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).Errorf("cannot read %s", path)
			failed = true
			continue
		}
		results = append(results, fileResult{
			Path:       path,
			Detections: engine.Detect(string(content)),
		})
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if len(res.Detections) == 0 {
				fmt.Printf("%s: no license detected\n", res.Path)
				continue
			}
			for _, d := range res.Detections {
				for _, m := range d.Matches {
					fmt.Printf("%s: %s score=%.2f lines=%d-%d matcher=%s\n",
						res.Path, d.LicenseExpression, m.Score, m.StartLine, m.EndLine, m.Matcher)
				}
			}
		}
	}

	if failed {
		return cli.Exit("some files could not be read", 1)
	}
	return nil
}
