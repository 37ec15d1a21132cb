package extractor

import "fmt"

// instructionContract is the fixed instruction sent ahead of every message.
// The contract is intentionally rigid: the model must answer with a single
// JSON object and nothing else. Parsing still assumes it will not comply
// (see parse.go), but a strict contract keeps the recovery path cold.
const instructionContract = `You extract structured order intents from code-mixed Hindi/English text sent to a hyperlocal delivery service.

Respond with EXACTLY one JSON object, no prose, no markdown fences:

{
  "intent": "<one of: order_food, order_grocery, create_parcel_order, unknown>",
  "confidence": <number between 0 and 1>,
  "entities": [
    {"text": "<span text>", "label": "<one of: FOOD, STORE, QTY, LOC, PREF>", "start": <char offset>, "end": <char offset>, "confidence": <number>}
  ],
  "cart_items": [
    {"food": "<item name>", "qty": <positive integer>, "store": "<store name or empty>"}
  ]
}

Rules:
- "start"/"end" are half-open character offsets into the original message. Omit them if unsure.
- "cart_items" is optional; omit it and the caller will derive the cart from entities.
- Spoken quantities ("do", "teen", "paanch", "two") stay as entity text; do not translate them.
- If the message is not an order at all, use intent "unknown".`

// buildPrompt appends the user's message to the instruction contract.
func buildPrompt(text string) string {
	return fmt.Sprintf("%s\n\nMessage:\n%s", instructionContract, text)
}
