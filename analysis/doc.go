/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package analysis turns GitHub issues into structured triage results and, for
the auto-fix pipeline, concrete change sets.

Two interchangeable backends are provided, one over the OpenAI chat
completions API and one over the Anthropic messages API; both are driven
through the same Analyzer interface and share prompt construction, response
decoding, and token-usage metrics. Results are ephemeral: nothing produced
here is cached or persisted, every call re-queries the model.
*/
package analysis
