package browser

// Page predicates evaluated in the browser. Text matching goes through XPath
// because querySelector has no text selector; everything returns a plain
// value chromedp can unmarshal.

const (
	// A visible booking entry point on the event page.
	jsHasBookButton = `(() => {
		const xp = "//button[contains(., 'Book tickets')] | //button[contains(., 'Book now')] | //a[contains(., 'Book tickets')] | //a[contains(., 'Book now')]";
		return document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null;
	})()`

	// An explicit sold-out marker.
	jsHasSoldOutMarker = `(() => {
		const xp = "//*[contains(text(), 'Sold out') or contains(text(), 'All full') or contains(text(), 'No tickets available')]";
		return document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null;
	})()`

	// The ticket-selection surface, reachable without clicking through.
	jsHasTicketSelection = `!!document.querySelector('.TicketCategories, .seating-layout, .ticket-types')`

	// An interstitial challenge blocking the page.
	jsHasChallenge = `!!document.querySelector('iframe[src*="recaptcha"], iframe[src*="hcaptcha"], iframe[title*="recaptcha" i], iframe[title*="hcaptcha" i], .captcha, #captcha, img[alt*="captcha" i]')`

	// A sign-in prompt, meaning the profile is not authenticated.
	jsHasSignInPrompt = `(() => {
		const xp = "//button[contains(., 'Sign in')] | //a[contains(., 'Sign in')] | //button[contains(., 'Login')] | //a[contains(., 'Login')]";
		return document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null;
	})()`

	// Clicks the booking entry point; returns whether one was found.
	jsClickBookButton = `(() => {
		const xp = "//button[contains(., 'Book tickets')] | //button[contains(., 'Book now')] | //a[contains(., 'Book tickets')] | //a[contains(., 'Book now')]";
		const el = document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		el.click();
		return true;
	})()`

	// Clicks the pay control; returns whether one was found.
	jsClickPayButton = `(() => {
		const xp = "//button[contains(., 'Proceed to pay')] | //button[contains(., 'Pay')] | //a[contains(., 'Proceed to pay')]";
		const el = document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		el.click();
		return true;
	})()`

	// Reads the confirmation page. id is empty when no booking reference is
	// present; found distinguishes "no confirmation markup at all".
	jsExtractConfirmation = `(() => {
		const out = {found: false, id: '', amount: 0};
		const indicator = document.querySelector('.booking-confirmed, .confirmation-message, .booking-success, .order-confirmed');
		const idEl = document.querySelector('.booking-id, [data-id="booking-id"], .confirmation-id');
		if (idEl) {
			const m = idEl.textContent.match(/Booking ID:\s*([A-Z0-9]+)/);
			out.id = m ? m[1] : idEl.textContent.trim();
		}
		if (!out.id) {
			const m = document.body.innerText.match(/Booking ID:\s*([A-Z0-9]+)/);
			if (m) out.id = m[1];
		}
		const amtEl = document.querySelector('.total-amount, .amount-paid, .order-total');
		if (amtEl) {
			const m = amtEl.textContent.match(/([\d,]+(\.\d+)?)/);
			if (m) out.amount = parseFloat(m[1].replace(/,/g, ''));
		}
		out.found = !!indicator || out.id !== '';
		return out;
	})()`
)

// ticketSelectionSelector is waited on after clicking through to selection.
const ticketSelectionSelector = `.TicketCategories, .seating-layout, .ticket-types`

// jsSelectInventoryFmt picks a preferred section when one is shown, sets the
// quantity control, and clicks through. Formatted with (qty, sections JSON).
const jsSelectInventoryFmt = `((qty, sections) => {
	for (const name of sections) {
		const xp = "//*[contains(@class, 'section') or contains(@class, 'category')][contains(., '" + name + "')]";
		const el = document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (el) { el.click(); break; }
	}
	const input = document.querySelector("input[type='number']");
	if (input) {
		input.value = qty;
		input.dispatchEvent(new Event('input', {bubbles: true}));
		input.dispatchEvent(new Event('change', {bubbles: true}));
	} else {
		const sel = document.querySelector('select');
		if (sel) {
			for (const opt of sel.options) {
				if (opt.value == String(qty) || opt.textContent.trim() == String(qty)) {
					sel.value = opt.value;
					sel.dispatchEvent(new Event('change', {bubbles: true}));
					break;
				}
			}
		}
	}
	const xp = "//button[contains(., 'Continue')] | //button[contains(., 'Proceed')] | //button[contains(., 'Select')]";
	const btn = document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!btn) return false;
	btn.click();
	return true;
})(%d, %s)`
