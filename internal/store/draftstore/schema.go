// internal/store/draftstore/schema.go
package draftstore

// draftSchema guards the JSONB payload written to application_drafts. The
// draft travels through several services as an opaque blob; the schema keeps
// a malformed writer from poisoning the table.
const draftSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "applicantId", "currentStep", "completedSteps", "documents", "createdAt", "updatedAt"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "applicantId": {"type": "string", "minLength": 1},
    "applicationType": {
      "type": "string",
      "enum": ["", "dataflow", "license_renewal", "mumaris_plus", "sheryan", "exam_booking"]
    },
    "targetCountry": {"type": "string"},
    "urgency": {"type": "string", "enum": ["standard", "expedited"]},
    "personalInfo": {"type": "object"},
    "education": {"type": "array"},
    "experience": {"type": "array"},
    "documents": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "category", "status"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "category": {"type": "string"},
            "status": {
              "type": "string",
              "enum": ["pending_review", "approved", "rejected", "requires_resubmission"]
            }
          }
        }
      }
    },
    "completedSteps": {"type": "object"},
    "currentStep": {
      "type": "string",
      "enum": ["application_type", "personal_info", "education", "experience", "documents", "review"]
    },
    "isDraftSaved": {"type": "boolean"},
    "createdAt": {"type": "string"},
    "updatedAt": {"type": "string"}
  }
}`
