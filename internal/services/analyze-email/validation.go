// internal/services/analyze-email/validation.go
package analyzeemail

import "advisor-ai/internal/common/validation"

const analysisSchemaJSON = `{
  "type": "object",
  "required": ["email_summary", "sender_details", "email_intent", "key_topics", "specific_questions",
               "attached_documents", "recommended_response"],
  "properties": {
    "email_summary": {"type": "string"},
    "sender_details": {
      "type": "object",
      "required": ["relationship"],
      "properties": {
        "name": {"type": ["string", "null"]},
        "email": {"type": ["string", "null"]},
        "relationship": {"type": "string"}
      }
    },
    "email_intent": {
      "type": "object",
      "required": ["category", "urgency", "action_required"],
      "properties": {
        "category": {"type": "string"},
        "urgency": {"enum": ["Low", "Medium", "High"]},
        "action_required": {"type": "boolean"}
      }
    },
    "key_topics": {"type": "array", "items": {"type": "string"}},
    "specific_questions": {"type": "array", "items": {"type": "string"}},
    "attached_documents": {
      "type": "object",
      "required": ["present"],
      "properties": {
        "present": {"type": "boolean"},
        "types": {"type": "array", "items": {"type": "string"}}
      }
    },
    "calculations_required": {"type": "array", "items": {"type": "string"}},
    "recommended_response": {
      "type": "object",
      "required": ["summary", "requires_manual_review", "escalation_needed"],
      "properties": {
        "summary": {"type": "string"},
        "requires_manual_review": {"type": "boolean"},
        "escalation_needed": {"type": "boolean"},
        "assigned_department": {"type": "string"}
      }
    },
    "values_mentioned": {"type": "array", "items": {"type": "string"}}
  }
}`

// analysisSchema checks the model's JSON before it is decoded and stored.
var analysisSchema = validation.MustCompile(analysisSchemaJSON)
