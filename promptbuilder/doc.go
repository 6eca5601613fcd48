/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder assembles LLM prompts from templates with named
placeholders.

A template contains {{name}} placeholders. Each placeholder must be bound
exactly once before Build succeeds, which keeps prompt construction honest:
forgetting a binding is an error at build time rather than a malformed prompt
sent to the model.

	p, _ := promptbuilder.NewPrompt("Analyze issue #{{number}}:\n{{issue}}")
	p, _ = p.BindString("number", "42")
	p, _ = p.BindJSON("issue", issue)
	prompt, err := p.Build()

Request types implement Bindable so executors can bind them without knowing
their shape.
*/
package promptbuilder
