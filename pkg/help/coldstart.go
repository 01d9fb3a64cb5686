package help

const ColdstartYAML = `# studybot Quick Start

generation:
  remote: "Anthropic, OpenAI or the shared proxy, tried in the configured order"
  template-fallback: "Offline generator used when no provider is set up or every provider fails"

output_formats:
  text: "Readable study sheet (default)"
  yaml: "Full study set as YAML"
  json: "Full study set as JSON"

commands:
  generate_from_url: |
    studybot generate --url "https://en.wikipedia.org/wiki/Osmosis"

  generate_from_text: |
    studybot generate --text "Osmosis is the movement of water across a membrane." --title "Osmosis"
    pbpaste | studybot generate --text -

  generate_offline: |
    studybot generate --url "https://example.com/article" --local

  generate_many: |
    studybot generate --url "url1,url2,url3" --workers 4

  preview_extraction: |
    studybot extract --url "https://example.com/article"
    studybot extract --url "https://example.com/article" --markdown

  list_sets: |
    studybot sets list
    studybot sets search osmosis

  review_set: |
    studybot sets show            # newest set
    studybot sets show 3f2a9c1d --detail detailed

  track_progress: |
    studybot sets known 3f2a9c1d 4
    studybot sets known 3f2a9c1d 4 --unknown
    studybot sets study 3f2a9c1d --studied 20 --correct 17

  edit_cards: |
    studybot sets add-card 3f2a9c1d --question "What is turgor?" --answer "Pressure of cell contents"
    studybot sets edit-card 3f2a9c1d 2 --answer "A better answer"
    studybot sets delete-card 3f2a9c1d 5

  export_import: |
    studybot sets export 3f2a9c1d --format yaml --dir ./exports
    studybot sets import ./exports/osmosis-2026-10-18.yaml

  stats_and_usage: |
    studybot stats
    studybot usage
    studybot usage --reset

  mcp_server: |
    studybot mcp                 # stdio
    studybot mcp --http :8080    # streamable HTTP at /mcp

config:
  file: "studybot.yaml in the working directory, or --config path"
  keys:
    - max_content_length
    - db_path
    - cache_dir
    - cache_ttl
    - request_timeout
    - providers
    - free_tier_limit
    - detail_level
    - workers
  env:
    - ANTHROPIC_API_KEY
    - OPENAI_API_KEY
    - STUDYBOT_PROVIDERS
    - STUDYBOT_PROXY_URL
    - STUDYBOT_DB_PATH

tips:
  - "Set ids can be shortened to any unambiguous prefix"
  - "Flashcards can be addressed by their number in 'sets show'"
  - "Pages longer than max_content_length are truncated with a notice"
  - "The free tier limit only applies to the shared proxy; your own keys are not counted"
`
