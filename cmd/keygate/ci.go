package keygate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(_ *cobra.Command, _ []string) error {
			var path string
			var content string
			switch provider {
			case "github":
				path = ".github/workflows/keygate.yml"
				content = `name: keygate
on:
  push:
    branches: [main]
  pull_request:

jobs:
  audit:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25'
      - name: Build keygate
        run: go build -o bin/keygate .
      - name: Audit exposure
        env:
          KEYGATE_URL: ${{ secrets.KEYGATE_URL }}
          KEYGATE_SHARED_KEY: ${{ secrets.KEYGATE_SHARED_KEY }}
        run: ./bin/keygate audit --no-auth --strict --json | tee keygate-report.json
      - uses: actions/upload-artifact@v4
        if: always()
        with:
          name: keygate-report
          path: keygate-report.json
`
			case "gitlab":
				path = ".gitlab-ci.yml"
				content = `stages: [audit]
audit:
  stage: audit
  image: golang:1.25
  script:
    - go version
    - go build -o bin/keygate .
    - ./bin/keygate audit --no-auth --strict --json | tee keygate-report.json
  artifacts:
    when: always
    paths:
      - keygate-report.json
`
			case "bitbucket":
				path = "bitbucket-pipelines.yml"
				content = `pipelines:
  default:
    - step:
        name: Keygate Audit
        image: golang:1.25
        caches:
          - go
        script:
          - go version
          - go build -o bin/keygate .
          - ./bin/keygate audit --no-auth --strict --json | tee keygate-report.json
        artifacts:
          - keygate-report.json
`
			case "azure":
				path = "azure-pipelines.yml"
				content = `trigger:
- main

pool:
  vmImage: 'ubuntu-latest'

steps:
- task: GoTool@0
  inputs:
    version: '1.25.x'
- script: |
    go version
    go build -o bin/keygate .
    ./bin/keygate audit --no-auth --strict --json | tee keygate-report.json
  displayName: 'Keygate Audit'
  env:
    KEYGATE_URL: $(KEYGATE_URL)
    KEYGATE_SHARED_KEY: $(KEYGATE_SHARED_KEY)
- publish: keygate-report.json
  artifact: keygate-report
  condition: succeededOrFailed()
`
			default:
				return fmt.Errorf("unknown --provider. Supported: github, gitlab, bitbucket, azure")
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket | azure")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}
