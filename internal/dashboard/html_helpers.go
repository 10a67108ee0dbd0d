package dashboard

import (
	"fmt"
	"strings"
)

// htmlHead returns the head section of the pages the server renders itself.
func htmlHead(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s - MR Enhancer</title>
	%s
</head>`, escapeHTML(title), commonCSS())
}

// commonCSS returns the styles of the server's own pages.
func commonCSS() string {
	return `<style>
		:root {
			--bg-primary: #f5f5f5;
			--bg-secondary: white;
			--text-primary: #333;
			--text-secondary: #666;
			--failed-bg: #f8d7da;
			--failed-text: #721c24;
		}
		body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: var(--bg-primary); color: var(--text-primary); }
		.container { max-width: 900px; margin: 0 auto; }
		.card { background: var(--bg-secondary); padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
		.error { background: var(--failed-bg); color: var(--failed-text); padding: 12px; border-radius: 4px; }
		li { color: var(--text-secondary); }
	</style>`
}

// actionScript wires the injected triggers to POST /api/actions.
// Copied text comes back in the response and goes to the browser clipboard.
func actionScript() string {
	return `<script>
	(function() {
		function kindOf(trigger) {
			var action = trigger.getAttribute('data-mr-enhancer-action');
			if (action === 'copy-branch') {
				return 'copy-' + trigger.getAttribute('data-mr-enhancer-branch') + '-branch';
			}
			return action;
		}
		document.addEventListener('click', function(event) {
			var trigger = event.target.closest('[data-mr-enhancer-action]');
			if (!trigger || trigger.disabled) {
				return;
			}
			event.preventDefault();
			var item = trigger.closest('[data-mr-enhancer-iid]');
			if (!item) {
				return;
			}
			var kind = kindOf(trigger);
			trigger.disabled = true;
			fetch('/api/actions', {
				method: 'POST',
				headers: {'Content-Type': 'application/json'},
				body: JSON.stringify({iid: item.getAttribute('data-mr-enhancer-iid'), kind: kind})
			}).then(function(resp) {
				return resp.json();
			}).then(function(result) {
				(result.alerts || []).forEach(function(message) { window.alert(message); });
				if (result.clipboard !== undefined && navigator.clipboard) {
					navigator.clipboard.writeText(result.clipboard);
				}
				if (result.ok && kind === 'toggle-wip') {
					window.location.reload();
				}
			}).catch(function(err) {
				window.alert('Action failed: ' + err);
			}).finally(function() {
				trigger.disabled = false;
			});
		});
	})();
	</script>`
}

// escapeHTML escapes special HTML characters to prevent XSS.
func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
