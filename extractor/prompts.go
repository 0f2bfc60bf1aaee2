/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package extractor

import "chainguard.dev/placebot/agents/promptbuilder"

const systemInstructions = `You are a precise data extraction assistant for a community directory of good places to work or relax.
You reply with exactly one JSON object and nothing else: no prose, no markdown fences, no comments.`

var newPlacePrompt = promptbuilder.MustNewPrompt(`Extract a new place from the GitHub issue below. The issue is usually written in Chinese and follows an issue form, but submitters often write free text instead.

{{issue}}

Return ONLY a JSON object matching this JSON Schema:
{{schema}}

Rules:
- title and address_text are required. Copy them as written; do not translate.
- latitude and longitude are decimal degrees. Omit them unless the issue states them.
- cost_per_person is the average spend per person as an integer number of yuan.
- opening_hours uses the format HH:MM-HH:MM, for example 09:00-21:00.
- amenities only contains tags from this list: {{amenities}}
- Omit every field the issue does not mention.`)

var updatePrompt = promptbuilder.MustNewPrompt(`The GitHub issue below asks to change an existing place in the directory. The issue is usually written in Chinese.

{{issue}}

Return ONLY a JSON object matching this JSON Schema:
{{schema}}

Rules:
- place_name is the name of the existing place exactly as the issue writes it.
- updates contains ONLY the fields the submitter wants to change. Omit every other field and never use null.
- latitude and longitude are decimal degrees and cost_per_person is an integer number of yuan.
- opening_hours uses the format HH:MM-HH:MM.
- amenities, when present, is the complete new list and only contains tags from: {{amenities}}`)

var screenshotPrompt = promptbuilder.MustNewPrompt(`The attached image is a screenshot of a place in a Chinese mapping or review app such as 大众点评, 高德地图, 美团 or 小红书. Extract the place it shows.

Notes the submitter added to the issue, if any:
{{notes}}

Return ONLY a JSON object matching this JSON Schema:
{{schema}}

Rules:
- title is the shop or venue name shown most prominently; address_text is the full address line. Both are required.
- cost_per_person: read values such as "人均 ¥45" or "¥45/人" as the integer 45.
- opening_hours: reduce values such as "营业中 周一至周日 09:00-21:00" to 09:00-21:00.
- Only use latitude and longitude if the screenshot prints coordinates.
- amenities only contains tags from this list that the screenshot clearly shows: {{amenities}}
- Omit every field the screenshot does not show.`)
