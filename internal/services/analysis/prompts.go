package analysis

const chatSystemPrompt = `You are an AI assistant helping analyze voice agent failures. You can:
1. Analyze error distributions and suggest common failure modes
2. Generate test cases for failure modes
3. Help identify patterns in voice agent errors

You have access to:
- Error Type Distribution: %s
- Existing Failure Modes: %s
%s
Be helpful, concise, and actionable. When suggesting failure modes or generating test cases, provide structured, usable output.`

const knowledgeSection = `
Relevant guidelines from the knowledge base (cite the source when you rely on them; if nothing relevant was found, say so rather than guessing):
%s
`

const categorizeSystemPrompt = "You are an expert at analyzing AI agent failures and categorizing them into actionable failure modes. Always return valid JSON."

const categorizePrompt = `You are analyzing voice agent call annotations. Review these observations and categorize them into coherent failure modes. Group similar issues together.

Observations:
%s

Return a JSON object with:
1. "failureModes": An array of objects with "mode" (the failure mode name) and "observations" (array of observation indices that belong to this mode)
2. "suggestions": An array of suggested fixes for each failure mode

Example response format:
{
  "failureModes": [
    {
      "mode": "persona-tone mismatch",
      "observations": [1, 3, 5],
      "description": "The agent uses inappropriate tone for the target audience"
    }
  ],
  "suggestions": [
    {
      "mode": "persona-tone mismatch",
      "fix": "Add explicit tone guidelines in the system prompt based on user persona"
    }
  ]
}`

const suggestFixSystemPrompt = "You are an expert at diagnosing and fixing AI agent failures. Provide specific, actionable suggestions. Always return valid JSON."

const suggestFixPrompt = `You are analyzing a voice agent failure. Based on the failure mode and observations, suggest specific fixes.

Failure Mode: %s

Observations:
%s

%s
Provide a specific, actionable fix suggestion. Include:
1. What needs to be changed
2. Why this change will help
3. Specific implementation guidance (e.g., prompt modifications, code changes)

Return a JSON object with:
{
  "suggestedFix": "Detailed fix suggestion",
  "implementation": "Specific steps to implement",
  "rationale": "Why this fix addresses the failure mode"
}`

const testCaseSystemPrompt = "You are an expert QA engineer specializing in creating minimal, reproducible test cases for AI voice agents. Always return a single valid JSON object matching the requested schema. Do not include any surrounding prose or markdown fences."

const testCasePrompt = `You are a QA engineer creating test cases for voice agent failures. Based on the failure mode and observations, create the simplest possible test case that can reproduce this failure.

Failure Mode: %s

%s
%s
Create a test case that:
1. Is the simplest possible scenario to reproduce the failure
2. Has a clear persona and user input/value
3. Includes the expected agent response
4. Specifies an escalation path (if any)
5. Can be used in UAT (User Acceptance Testing)

Return a JSON object with:
{
  "testCaseId": "Short identifier for this test case (e.g. TC_UNEXPECTED_001)",
  "testScenario": "High-level scenario description (e.g. multiple household members)",
  "personaType": "Persona description (e.g. multiple household members with 1 enrollment)",
  "userInput": "What the user says or provides",
  "expectedResponse": "What the assistant should say/do",
  "escalationPath": "Escalation behavior if applicable (e.g. transferred to CSR, external transfer, etc.)"
}`

const ticketSystemPrompt = "You are an expert at creating clear, actionable bug tickets for AI voice agents. Always return a single valid JSON object matching the requested schema. Do not include any surrounding prose or markdown fences."

const ticketPrompt = `You are creating a bug ticket for a voice agent failure. Based on the failure mode, test case, and problem description, create a well-structured ticket.

Failure Mode: %s

Test Case:
%s

%s
%s
Create a bug ticket with:
1. A clear, concise title
2. Detailed description of the issue
3. Steps to reproduce (from test case)
4. Expected vs actual behavior
5. Priority level (low, medium, high, critical)
6. Any relevant context

Return a JSON object with:
{
  "title": "Clear, concise bug title",
  "description": "Detailed description including steps to reproduce, expected vs actual behavior, and impact",
  "priority": "low|medium|high|critical"
}`
