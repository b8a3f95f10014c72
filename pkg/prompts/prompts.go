package prompts

var (
	AssessGoal = `
You are an intelligent AI who specializes in understanding user requests for an automation assistant.

The user said: "{{.Message}}"

Conversation so far, as an ordered json list:
{{.History}}

Context gathered so far, as a json object:
{{.Context}}

The assistant can only act through these skills, as a json list:
{{.Skills}}

Decide whether the request is understood well enough to plan concrete actions with the listed skills.
Extract any concrete facts from the message into extractedContext as key/value pairs.
If something essential is missing, name it in missingInfo and write one short clarifying question.

Fill in the following json format, escape any invalid characters in the values, return only what is in the json block, e.g. {}:
{
    "understood": {TRUE_OR_FALSE},
    "confidence": {NUMBER_BETWEEN_0_AND_1},
    "extractedContext": {KEY_VALUE_PAIRS},
    "missingInfo": ["{LIST_OF_MISSING_DETAILS}"],
    "question": "{ONE_CLARIFYING_QUESTION_OR_EMPTY}"
}
`

	ExtractResponse = `
You are an intelligent AI who specializes in reading free-text answers.

You previously asked the user: "{{.Question}}"

The user answered: "{{.Answer}}"

Context gathered so far, as a json object:
{{.Context}}

Pull every concrete fact out of the answer as key/value pairs. Use short lowerCamelCase keys.
If the answer holds nothing structured, return the answer under the key "answer".

Return only a json object, e.g. {"key": "value"}:
`

	CreatePlan = `
You are an intelligent AI who specializes in planning actions for an automation assistant.

The goal is: "{{.Goal}}"

Context gathered so far, as a json object:
{{.Context}}

The assistant can only act through these skills, as a json list:
{{.Skills}}

Devise an ordered list of steps that accomplishes as much of the goal as the skills allow.
Each step uses exactly one skillKey from the list and states its purpose in one sentence.
Steps are costly, so use as few as possible.
A capability the goal needs but no listed skill provides goes into gaps, never into steps.
Summarize in canAccomplish what the plan will and will not achieve.

Fill in the following json format, escape any invalid characters in the values, return only what is in the json block, e.g. {}:
{
    "steps": [{"skillKey": "{SKILL_KEY}", "purpose": "{WHY_THIS_STEP}", "input": {KEY_VALUE_PAIRS}}],
    "gaps": [{"capability": "{MISSING_CAPABILITY}", "suggestion": "{HOW_TO_CLOSE_IT}"}],
    "canAccomplish": "{ONE_SENTENCE_SUMMARY}"
}
`
)
