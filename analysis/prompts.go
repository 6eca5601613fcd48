/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"fmt"

	"github.com/gdev-ai/gdev/promptbuilder"
)

const analysisSystem = `You are a senior software engineer triaging GitHub issues.
Provide detailed technical analysis with specific references to the codebase where
possible, and actionable resolution steps. Be concrete; avoid generic advice.`

const analysisTemplate = `Analyze this GitHub issue from the repository {{repository}}.

<issue>
{{issue}}
</issue>

Provide:
1. A technical analysis of the issue.
2. Specific, actionable steps to resolve it.
3. A priority tier: High, Medium, or Low.
4. A complexity tier: Complex, Medium, or Simple.

Respond with a single JSON object matching this schema, and nothing else:

{{schema}}`

const fixSystem = `You are a senior software engineer fixing a GitHub issue.
You produce complete replacement file contents, never diffs or fragments.
Only touch files that are necessary for the fix.`

const fixTemplate = `Fix the following issue in the repository {{repository}}.
Your changes will be committed to branch {{branch}} and submitted as a pull request.

<issue>
{{issue}}
</issue>

A prior analysis of the issue:

{{analysis}}

Respond with a single JSON object matching this schema, and nothing else:

{{schema}}

Every entry in "files" must contain the complete new content of that file.`

// Bind implements promptbuilder.Bindable for IssueRequest.
func (r *IssueRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindString("repository", r.Owner+"/"+r.Repo)
	if err != nil {
		return nil, err
	}
	return p.BindXML("issue", r.Issue)
}

// Bind implements promptbuilder.Bindable for FixRequest.
func (r *FixRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindString("repository", r.Owner+"/"+r.Repo)
	if err != nil {
		return nil, err
	}
	if p, err = p.BindString("branch", r.Branch); err != nil {
		return nil, err
	}
	if p, err = p.BindXML("issue", r.Issue); err != nil {
		return nil, err
	}
	return p.BindJSON("analysis", r.Result)
}

func buildAnalysisPrompt(req *IssueRequest) (system, user string, err error) {
	p, err := promptbuilder.NewPrompt(analysisTemplate)
	if err != nil {
		return "", "", err
	}
	if p, err = req.Bind(p); err != nil {
		return "", "", err
	}
	if p, err = bindSchema(p, &analysisPayload{}); err != nil {
		return "", "", err
	}
	user, err = p.Build()
	return analysisSystem, user, err
}

func buildFixPrompt(req *FixRequest) (system, user string, err error) {
	p, err := promptbuilder.NewPrompt(fixTemplate)
	if err != nil {
		return "", "", err
	}
	if p, err = req.Bind(p); err != nil {
		return "", "", err
	}
	if p, err = bindSchema(p, &ChangeSet{}); err != nil {
		return "", "", err
	}
	user, err = p.Build()
	return fixSystem, user, err
}

func bindSchema(p *promptbuilder.Prompt, v any) (*promptbuilder.Prompt, error) {
	s, err := schemaFor(v)
	if err != nil {
		return nil, fmt.Errorf("reflecting response schema: %w", err)
	}
	return p.BindString("schema", s)
}
