package browser

// snapshotScript is evaluated in the page to produce a JSON tree matching
// jsNode (declared in session.go). It fuses DOM + computed style + bounding-rect + a best-
// effort accessibility read (role/aria attributes) into one payload in a
// single round trip, standing in for separate DOM.getDocument /
// Accessibility.getFullAXTree / DOMSnapshot.captureSnapshot calls — CDP's
// raw snapshot structs are deliberately not hand-parsed here; the facade
// only needs to reconstruct an EnhancedDOMNode tree with the same fields,
// and walking live DOM properties through Runtime.evaluate gets there in
// one call instead of three, at the cost of not exposing paint-order from
// the compositor directly, so paintOrder is derived from document order
// as a stand-in within a single stacking context.
const snapshotScript = `
() => {
  let counter = 1;
  function styleOf(el) {
    const cs = getComputedStyle(el);
    return {
      display: cs.display, visibility: cs.visibility, opacity: cs.opacity,
      'overflow-x': cs.overflowX, 'overflow-y': cs.overflowY,
      cursor: cs.cursor, 'pointer-events': cs.pointerEvents,
      position: cs.position, 'background-color': cs.backgroundColor,
    };
  }
  function rectOf(el) {
    const r = el.getBoundingClientRect();
    return { x: r.x, y: r.y, width: r.width, height: r.height };
  }
  function walk(node) {
    if (node.nodeType === Node.TEXT_NODE) {
      const text = node.textContent || '';
      if (!text.trim()) return null;
      return { nodeType: 1, textValue: text };
    }
    if (node.nodeType !== Node.ELEMENT_NODE) return null;
    const el = node;
    const tag = el.tagName.toLowerCase();
    if (['script', 'style', 'meta', 'link', 'title'].includes(tag)) return null;

    const attrs = {};
    for (const a of el.attributes || []) attrs[a.name] = a.value;

    const rect = rectOf(el);
    const cs = styleOf(el);
    const id = counter++;

    el.setAttribute('data-agent-idx', String(id));

    const children = [];
    for (const child of el.childNodes) {
      const c = walk(child);
      if (c) children.push(c);
    }

    return {
      nodeType: 0,
      tagName: tag,
      backendNodeId: id,
      attributes: attrs,
      viewportBounds: rect,
      clientRect: { x: 0, y: 0, width: el.clientWidth, height: el.clientHeight },
      scrollRect: { x: 0, y: 0, width: el.scrollWidth, height: el.scrollHeight },
      computedStyles: cs,
      paintOrder: id,
      isClickable: cs.cursor === 'pointer',
      isVisible: rect.width > 0 && rect.height > 0 && cs.visibility !== 'hidden' && cs.display !== 'none',
      axRole: el.getAttribute('role') || '',
      axName: el.getAttribute('aria-label') || el.innerText && el.innerText.slice(0, 80) || '',
      children,
    };
  }
  return JSON.stringify(walk(document.documentElement));
}
`
