package terms

const extractionPrompt = `You extract domain-specific terms from documents to improve speech-to-text accuracy.

Extract terms in these categories:
1. Drug Names — Generic names, brand names, drug classes
2. Medical Terms — Conditions, procedures, biomarkers
3. Acronyms — Medical and business abbreviations
4. Industry Terms — Specialized terminology
5. Organizations — Company names, institutions

Guidelines:
- Focus on terms speech-to-text might misrecognize
- Include multi-word phrases (up to 6 words)
- Exclude common words like "patient", "treatment"
- Prioritize proper nouns, acronyms, drug names

Return JSON:
{
  "categories": [
    {"name": "Drug Names", "terms": ["term1", "term2"]},
    {"name": "Medical Terms", "terms": [...]}
  ],
  "suggested_name": "Name based on document content"
}

Only return valid JSON. Omit empty categories. Aim for 20-150 terms.`
